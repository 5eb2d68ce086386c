package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/fjod/go_pos/internal/domain"
	"github.com/fjod/go_pos/internal/money"
)

// utf8BOM makes Excel open the Thai headers as UTF-8.
const utf8BOM = "\ufeff"

var (
	salesHeader = []string{"เลขที่ออเดอร์", "วันที่", "วิธีชำระเงิน", "ยอดรวม", "ส่วนลด", "ค่าบริการเพิ่มเติม", "ยอดสุทธิ", "เงินที่รับ", "เงินทอน"}
	menuHeader  = []string{"รหัสเมนู", "ชื่อเมนู", "จำนวน", "ยอดขาย"}
)

// SalesCSV writes one row per order. Times are printed in loc.
func SalesCSV(w io.Writer, orders []domain.Order, loc *time.Location) error {
	if loc == nil {
		loc = time.Local
	}
	rows := make([][]string, 0, len(orders))
	for _, o := range orders {
		received, change := "", ""
		if o.CashReceived != nil {
			received = money.Fixed(*o.CashReceived)
		}
		if o.CashChange != nil {
			change = money.Fixed(*o.CashChange)
		}
		rows = append(rows, []string{
			o.OrderNo,
			o.CreatedAt.In(loc).Format("2006-01-02 15:04:05"),
			MethodName(o.PaymentMethodID),
			money.Fixed(o.Subtotal),
			money.Fixed(o.Discount),
			money.Fixed(o.ExtraFee),
			money.Fixed(o.GrandTotal),
			received,
			change,
		})
	}
	return writeCSV(w, salesHeader, rows)
}

func MenuSalesCSV(w io.Writer, stats []MenuStat) error {
	rows := make([][]string, 0, len(stats))
	for _, s := range stats {
		rows = append(rows, []string{s.MenuItemID, s.Name, strconv.Itoa(s.Quantity), money.Fixed(s.Revenue)})
	}
	return writeCSV(w, menuHeader, rows)
}

func writeCSV(w io.Writer, header []string, rows [][]string) error {
	if _, err := io.WriteString(w, utf8BOM); err != nil {
		return fmt.Errorf("write bom: %w", err)
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	if err := cw.WriteAll(rows); err != nil {
		return fmt.Errorf("write rows: %w", err)
	}
	return nil
}
