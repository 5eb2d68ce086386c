package checkout

import (
	"context"
	"fmt"

	"github.com/fjod/go_pos/internal/backend"
	"github.com/fjod/go_pos/internal/receipt"
)

const (
	ReceiptFolder      = "receipts"
	ReceiptContentType = "image/png"
)

type ReceiptRenderer interface {
	RenderPNG(ctx context.Context, s receipt.Snapshot) ([]byte, error)
}

// ReceiptIssuer renders a receipt, uploads it and links it to its order.
type ReceiptIssuer struct {
	renderer ReceiptRenderer
	storage  backend.Storage
	orders   backend.OrderAPI
}

func NewReceiptIssuer(renderer ReceiptRenderer, storage backend.Storage, orders backend.OrderAPI) *ReceiptIssuer {
	return &ReceiptIssuer{renderer: renderer, storage: storage, orders: orders}
}

// Issued is what got done before Issue returned. PNG is set once rendering
// succeeded and URL once the upload did.
type Issued struct {
	PNG []byte
	URL string
}

func (ri *ReceiptIssuer) Issue(ctx context.Context, orderID string, s receipt.Snapshot) (Issued, error) {
	var out Issued

	png, err := ri.renderer.RenderPNG(ctx, s)
	if err != nil {
		return out, fmt.Errorf("render receipt %s: %w", s.OrderNo, err)
	}
	out.PNG = png

	url, err := ri.storage.Upload(ctx, s.FileName(), ReceiptContentType, png, ReceiptFolder)
	if err != nil {
		return out, fmt.Errorf("upload receipt %s: %w", s.OrderNo, err)
	}
	out.URL = url

	if err := ri.orders.UpdateOrder(ctx, orderID, map[string]any{"receipt_url": url}); err != nil {
		return out, fmt.Errorf("attach receipt to order %s: %w", s.OrderNo, err)
	}
	return out, nil
}
