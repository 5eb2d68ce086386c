package receipt

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg"
	"image/png"
	"os"
	"sync"
	"time"

	"github.com/fjod/go_pos/internal/money"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

const (
	Width  = 900
	Height = 1200

	cardPad  = 40
	textPad  = cardPad + 60
	rulePad  = cardPad + 20
	logoSize = 140
)

var (
	backgroundColor = color.RGBA{R: 0xF7, G: 0xF7, B: 0xF8, A: 0xFF}
	cardColor       = color.RGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF}
	textColor       = color.RGBA{R: 0x11, G: 0x18, B: 0x27, A: 0xFF}
	ruleColor       = color.RGBA{R: 0xE5, G: 0xE7, B: 0xEB, A: 0xFF}
)

var (
	ErrLogo = errors.New("receipt logo unavailable")
	ErrFont = errors.New("receipt font unavailable")
)

type Options struct {
	// LogoPath points at a PNG or JPEG. Empty draws no logo.
	LogoPath string
	// FontPath and BoldFontPath point at TrueType/OpenType files. Empty
	// falls back to the embedded Go fonts, which have no Thai glyphs.
	FontPath     string
	BoldFontPath string
	// Location is the time zone of the printed timestamp. nil means local.
	Location *time.Location
}

// UsesFallbackFont reports whether body text would be drawn with the
// embedded Go fonts.
func (o Options) UsesFallbackFont() bool {
	return o.FontPath == ""
}

type Renderer struct {
	opts Options

	mu    sync.Mutex
	fonts map[string]*opentype.Font
}

func NewRenderer(opts Options) *Renderer {
	if opts.Location == nil {
		opts.Location = time.Local
	}
	return &Renderer{opts: opts, fonts: map[string]*opentype.Font{}}
}

// RenderPNG renders the receipt and encodes it as PNG.
func (r *Renderer) RenderPNG(ctx context.Context, s Snapshot) ([]byte, error) {
	img, err := r.Render(ctx, s)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode receipt: %w", err)
	}
	return buf.Bytes(), nil
}

// Render draws the receipt. Only loading the logo or the fonts can fail.
func (r *Renderer) Render(ctx context.Context, s Snapshot) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	faces, err := r.loadFaces()
	if err != nil {
		return nil, err
	}
	defer faces.close()

	logo, err := r.loadLogo()
	if err != nil {
		return nil, err
	}

	c := newCanvas()
	y := cardPad + 30

	if logo != nil {
		dst := image.Rect(Width/2-logoSize/2, y, Width/2+logoSize/2, y+logoSize)
		draw.CatmullRom.Scale(c.img, dst, logo, logo.Bounds(), draw.Over, nil)
	}
	y += logoSize + 20

	c.centered(s.Shop.Name, y, faces.title)
	y += 34
	c.centered(s.Shop.Address, y, faces.body)
	y += 22
	c.centered(s.Shop.Phone, y, faces.body)
	y += 30
	c.rule(y)
	y += 24

	c.left("เลขที่ออร์เดอร์: "+s.OrderNo, y, faces.strong)
	c.right(ThaiTimestamp(s.IssuedAt.In(r.opts.Location)), y, faces.body)
	y += 26
	c.left("วิธีชำระเงิน: "+s.PaymentMethod, y, faces.body)
	y += 26

	if s.IsCash {
		c.left("ยอดรับเงิน: "+money.Format(s.CashReceived), y, faces.body)
		y += 24
		c.left("เงินทอน: "+money.Format(s.CashChange), y, faces.body)
		y += 24
	}

	y += 6
	c.rule(y)
	y += 24

	c.left("รายการ", y, faces.label)
	c.right("รวม", y, faces.label)
	y += 22

	for _, it := range s.Items {
		c.left(fmt.Sprintf("%s x%d @%s", it.Name, it.Quantity, money.Format(it.UnitPrice)), y, faces.body)
		c.right(money.Format(it.LineTotal), y, faces.body)
		y += 22
	}

	y += 6
	c.rule(y)
	y += 24

	c.left("ยอดรวม", y, faces.strong)
	c.right(money.Format(s.Subtotal), y, faces.strong)
	y += 26
	c.left("ส่วนลด", y, faces.body)
	c.right("-"+money.Format(s.Discount), y, faces.body)
	y += 22
	c.left("ค่าอื่น ๆ", y, faces.body)
	c.right(money.Format(s.ExtraFee), y, faces.body)
	y += 26
	c.rule(y)
	y += 30

	c.left("ยอดสุทธิ", y, faces.total)
	c.right(money.Format(s.GrandTotal), y, faces.total)
	y += 36

	c.centered(s.Shop.Footer, y+10, faces.strong)

	return c.img, nil
}

func (r *Renderer) loadLogo() (image.Image, error) {
	if r.opts.LogoPath == "" {
		return nil, nil
	}
	f, err := os.Open(r.opts.LogoPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLogo, err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%w: decode %s: %w", ErrLogo, r.opts.LogoPath, err)
	}
	return img, nil
}

type faceSet struct {
	title, body, strong, label, total font.Face
}

func (f *faceSet) close() {
	for _, face := range []font.Face{f.title, f.body, f.strong, f.label, f.total} {
		if face != nil {
			_ = face.Close()
		}
	}
}

func (r *Renderer) loadFaces() (*faceSet, error) {
	regular, err := r.font(r.opts.FontPath, goregular.TTF)
	if err != nil {
		return nil, err
	}
	boldPath := r.opts.BoldFontPath
	if boldPath == "" && r.opts.FontPath != "" {
		boldPath = r.opts.FontPath
	}
	bold, err := r.font(boldPath, gobold.TTF)
	if err != nil {
		return nil, err
	}

	set := &faceSet{}
	specs := []struct {
		dst  *font.Face
		f    *opentype.Font
		size float64
	}{
		{&set.title, bold, 30},
		{&set.body, regular, 16},
		{&set.strong, bold, 18},
		{&set.label, bold, 16},
		{&set.total, bold, 22},
	}
	for _, sp := range specs {
		face, err := opentype.NewFace(sp.f, &opentype.FaceOptions{
			Size:    sp.size,
			DPI:     72,
			Hinting: font.HintingFull,
		})
		if err != nil {
			set.close()
			return nil, fmt.Errorf("%w: %w", ErrFont, err)
		}
		*sp.dst = face
	}
	return set, nil
}

// font parses and caches the font at path, or the embedded fallback when
// path is empty.
func (r *Renderer) font(path string, fallback []byte) (*opentype.Font, error) {
	key := path
	if key == "" {
		key = fmt.Sprintf("embedded:%d", len(fallback))
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if f, ok := r.fonts[key]; ok {
		return f, nil
	}

	data := fallback
	if path != "" {
		var err error
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrFont, err)
		}
	}
	f, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%w: parse %s: %w", ErrFont, key, err)
	}
	r.fonts[key] = f
	return f, nil
}

type canvas struct {
	img *image.RGBA
}

func newCanvas() *canvas {
	img := image.NewRGBA(image.Rect(0, 0, Width, Height))
	draw.Draw(img, img.Bounds(), image.NewUniform(backgroundColor), image.Point{}, draw.Src)
	card := image.Rect(cardPad, cardPad, Width-cardPad, Height-cardPad)
	draw.Draw(img, card, image.NewUniform(cardColor), image.Point{}, draw.Src)
	return &canvas{img: img}
}

func (c *canvas) rule(y int) {
	line := image.Rect(rulePad, y, Width-rulePad, y+1)
	draw.Draw(c.img, line, image.NewUniform(ruleColor), image.Point{}, draw.Src)
}

func (c *canvas) text(s string, x, y int, face font.Face) {
	d := &font.Drawer{
		Dst:  c.img,
		Src:  image.NewUniform(textColor),
		Face: face,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(s)
}

func (c *canvas) left(s string, y int, face font.Face) {
	c.text(s, textPad, y, face)
}

func (c *canvas) right(s string, y int, face font.Face) {
	w := font.MeasureString(face, s).Ceil()
	c.text(s, Width-textPad-w, y, face)
}

func (c *canvas) centered(s string, y int, face font.Face) {
	w := font.MeasureString(face, s).Ceil()
	c.text(s, (Width-w)/2, y, face)
}
