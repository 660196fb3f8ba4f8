package storefront

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"WhipStore/internal/cart"
	"WhipStore/internal/catalog"
	"WhipStore/internal/stock"
	"WhipStore/internal/view"
)

var (
	ErrUnknownProduct = errors.New("unknown product")
	ErrUnknownSize    = errors.New("size not offered")
	ErrEmptyCart      = errors.New("cart is empty")
	ErrNotLoggedIn    = errors.New("not logged in")
)

// CartReply is the state every cart mutation answers with: the notice it
// raised, both cart views and the product cards whose stock changed.
type CartReply struct {
	Added    bool              `json:"added"`
	Stale    bool              `json:"stale,omitempty"`
	Notice   *view.Notice      `json:"notice,omitempty"`
	Cart     view.CartView     `json:"cart"`
	MiniCart view.MiniCartView `json:"mini_cart"`
	Cards    []stock.CardState `json:"cards"`
}

func (ss *session) reply() CartReply {
	items := ss.cart.Items()
	return CartReply{
		Cart:     view.BuildCart(items),
		MiniCart: view.BuildMiniCart(items),
		Cards:    []stock.CardState{},
	}
}

func (s *Server) listProducts(ctx context.Context) ([]catalog.Product, error) {
	products, err := s.Source.ListProducts(ctx)
	if err != nil {
		s.metrics.catalogError("list")
		if errors.Is(err, catalog.ErrUnavailable) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", catalog.ErrUnavailable, err)
	}
	return products, nil
}

func (s *Server) reconciler(ss *session, products []catalog.Product) *stock.Reconciler {
	return stock.NewReconciler(stock.NewIndex(products), ss.cart, s.Policy, ss.log)
}

// addToCart reserves one unit of productID in size. An empty size picks the
// product's first one. Running out of stock is not an error: the reply has
// Added false and the no-stock notice.
func (s *Server) addToCart(ctx context.Context, ss *session, productID, size string) (CartReply, error) {
	products, err := s.listProducts(ctx)
	if err != nil {
		return CartReply{}, err
	}
	rec := s.reconciler(ss, products)

	p, ok := stock.NewIndex(products).Product(productID)
	if !ok || !p.Active() {
		return CartReply{}, fmt.Errorf("%w: %s", ErrUnknownProduct, productID)
	}
	if size == "" && len(p.Sizes) > 0 {
		size = p.Sizes[0]
	}
	if !p.HasSize(size) {
		return CartReply{}, fmt.Errorf("%w: %s %q", ErrUnknownSize, productID, size)
	}

	line := cart.LineItem{
		ProductID:   string(p.ID),
		ProductName: p.Name,
		Price:       p.EffectivePrice(),
		Size:        size,
	}

	err = ss.cart.Add(ctx, line, rec)
	switch {
	case errors.Is(err, cart.ErrNoStock):
		s.metrics.cartOp("add", "no_stock")
		out := ss.reply()
		n := s.Notices.Push(ss.id, NoticeError, NoStockMessage)
		out.Notice = &n
		out.Cards = []stock.CardState{rec.Refresh(line.ProductID, size)}
		return out, nil
	case err != nil:
		s.metrics.cartOp("add", "error")
		return CartReply{}, err
	}

	s.metrics.cartOp("add", "ok")
	out := ss.reply()
	out.Added = true
	n := s.Notices.Push(ss.id, NoticeSuccess, AddedMessage(p.Name, size))
	out.Notice = &n
	out.Cards = []stock.CardState{rec.Refresh(line.ProductID, size)}
	return out, nil
}

// removeFromCart drops the line at index. An index that no longer exists is
// a silent no-op flagged Stale.
func (s *Server) removeFromCart(ctx context.Context, ss *session, index int) (CartReply, error) {
	removed, err := ss.cart.RemoveAt(ctx, index)
	switch {
	case errors.Is(err, cart.ErrOutOfRange):
		s.metrics.cartOp("remove", "stale")
		ss.log.Debug("stale cart index", zap.Int("index", index))
		out := ss.reply()
		out.Stale = true
		return out, nil
	case err != nil:
		s.metrics.cartOp("remove", "error")
		return CartReply{}, err
	}

	s.metrics.cartOp("remove", "ok")
	out := ss.reply()
	out.Cards = s.refreshCards(ctx, ss, []cart.LineItem{removed})
	return out, nil
}

func (s *Server) clearCart(ctx context.Context, ss *session) (CartReply, error) {
	prior, err := ss.cart.Clear(ctx)
	if err != nil {
		s.metrics.cartOp("clear", "error")
		return CartReply{}, err
	}

	s.metrics.cartOp("clear", "ok")
	out := ss.reply()
	out.Cards = s.refreshCards(ctx, ss, prior)
	return out, nil
}

// refreshCards recomputes the cards lines touched. Without a catalog there
// is nothing to recompute against, so the list stays empty.
func (s *Server) refreshCards(ctx context.Context, ss *session, lines []cart.LineItem) []stock.CardState {
	if len(lines) == 0 {
		return []stock.CardState{}
	}
	products, err := s.listProducts(ctx)
	if err != nil {
		ss.log.Warn("card refresh skipped", zap.Error(err))
		return []stock.CardState{}
	}
	return s.reconciler(ss, products).RefreshAll(lines)
}

// catalogView builds the storefront sections for ss, or the unavailable
// view with the load error.
func (s *Server) catalogView(ctx context.Context, ss *session, f view.Filters) (view.CatalogView, error) {
	products, err := s.listProducts(ctx)
	if err != nil {
		ss.log.Warn("catalog load failed", zap.Error(err))
		return view.CatalogUnavailable(), err
	}
	return view.BuildCatalog(products, s.reconciler(ss, products), f, nil), nil
}

func (s *Server) cardState(ctx context.Context, ss *session, productID, size string) (stock.CardState, error) {
	products, err := s.listProducts(ctx)
	if err != nil {
		return stock.CardState{}, err
	}
	p, ok := stock.NewIndex(products).Product(productID)
	if !ok || !p.Active() {
		return stock.CardState{}, fmt.Errorf("%w: %s", ErrUnknownProduct, productID)
	}
	if size != "" && !p.HasSize(size) {
		return stock.CardState{}, fmt.Errorf("%w: %s %q", ErrUnknownSize, productID, size)
	}
	return s.reconciler(ss, products).Refresh(productID, size), nil
}

// gallery prefers a fresh read of the product and falls back to the list.
func (s *Server) gallery(ctx context.Context, id string, index int) (view.Gallery, error) {
	p, err := s.Source.GetProduct(ctx, id)
	if err == nil {
		return view.BuildGallery(p, index), nil
	}
	if errors.Is(err, catalog.ErrNotFound) {
		return view.Gallery{}, fmt.Errorf("%w: %s", ErrUnknownProduct, id)
	}
	s.metrics.catalogError("get")
	s.Log.Warn("gallery product read failed", zap.String("product_id", id), zap.Error(err))

	products, lerr := s.listProducts(ctx)
	if lerr != nil {
		return view.Gallery{}, err
	}
	if p, ok := stock.NewIndex(products).Product(id); ok {
		return view.BuildGallery(p, index), nil
	}
	return view.Gallery{}, fmt.Errorf("%w: %s", ErrUnknownProduct, id)
}

// checkout hands the cart to the collaborator and clears it on success.
func (s *Server) checkout(ctx context.Context, ss *session) (CartReply, error) {
	loggedIn, email := ss.user(ctx)
	if !loggedIn {
		return CartReply{}, ErrNotLoggedIn
	}

	items := ss.cart.Items()
	if len(items) == 0 {
		return CartReply{}, ErrEmptyCart
	}

	order := Order{Email: email, Items: items, Total: cart.Total(items)}
	if err := s.Checkout.Checkout(ctx, order); err != nil {
		s.metrics.cartOp("checkout", "error")
		return CartReply{}, err
	}

	s.metrics.cartOp("checkout", "ok")
	return s.clearCart(ctx, ss)
}
