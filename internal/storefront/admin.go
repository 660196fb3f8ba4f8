package storefront

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"WhipStore/internal/admin"
	"WhipStore/internal/auth"
	"WhipStore/pkg/kit"
)

func (s *Server) adminRoutes(r chi.Router) {
	jwt := auth.NewTokenMaker("")
	if s.AdminAuth != nil && s.AdminAuth.JWT != nil {
		s.AdminAuth.Register(r)
		jwt = s.AdminAuth.JWT
	}

	r.Group(func(r chi.Router) {
		r.Use(auth.RequireAdmin(jwt))

		r.Get("/", s.handleAdminPage)
		r.Route("/api", func(r chi.Router) {
			r.Get("/products", s.handleAdminList)
			r.Post("/filters/reset", s.handleAdminReset)
			r.Patch("/products/{id}", s.handleAdminUpdate)
			r.Post("/products/{id}/revert", s.handleAdminRevert)
			r.Post("/save", s.handleAdminSave)
			r.Get("/export", s.handleAdminExport)
		})
	})
}

// editor returns the shared admin table, loading it on first use.
func (s *Server) editor(ctx context.Context) (*admin.Editor, error) {
	s.adminMu.Lock()
	defer s.adminMu.Unlock()

	if s.Admin != nil {
		return s.Admin, nil
	}
	products, err := s.listProducts(ctx)
	if err != nil {
		return nil, err
	}
	s.Admin = admin.NewEditor(products)
	return s.Admin, nil
}

// adminQuery applies the table filter when the query carries one and then
// the requested page.
func adminQuery(e *admin.Editor, q url.Values) (admin.Page, error) {
	page := e.Current()

	if q.Has("search") || q.Has("category") || q.Has("brand") || q.Has("max_price") {
		f := admin.Filter{
			Search:   q.Get("search"),
			Category: q.Get("category"),
			Brand:    q.Get("brand"),
		}
		if raw := q.Get("max_price"); raw != "" {
			n, err := strconv.ParseInt(raw, 10, 64)
			if err != nil {
				return admin.Page{}, &kit.ValidationError{Fields: map[string]string{"max_price": "is invalid"}}
			}
			f.MaxPrice = n
		}
		if err := kit.Validate(f); err != nil {
			return admin.Page{}, err
		}
		page = e.Apply(f)
	}

	if raw := q.Get("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return admin.Page{}, &kit.ValidationError{Fields: map[string]string{"page": "is invalid"}}
		}
		page = e.GoTo(n)
	}
	return page, nil
}

func (s *Server) adminPage(w http.ResponseWriter, r *http.Request) (admin.Page, *admin.Editor, bool) {
	e, err := s.editor(r.Context())
	if err != nil {
		s.writeShopError(w, r, err)
		return admin.Page{}, nil, false
	}
	page, err := adminQuery(e, r.URL.Query())
	if err != nil {
		kit.WriteDecodeError(w, r, err)
		return admin.Page{}, nil, false
	}
	return page, e, true
}

func (s *Server) handleAdminPage(w http.ResponseWriter, r *http.Request) {
	page, _, ok := s.adminPage(w, r)
	if !ok {
		return
	}
	s.renderHTML(w, r, "admin", page)
}

func (s *Server) handleAdminList(w http.ResponseWriter, r *http.Request) {
	page, _, ok := s.adminPage(w, r)
	if !ok {
		return
	}
	kit.WriteJSON(w, http.StatusOK, page)
}

func (s *Server) handleAdminReset(w http.ResponseWriter, r *http.Request) {
	e, err := s.editor(r.Context())
	if err != nil {
		s.writeShopError(w, r, err)
		return
	}
	kit.WriteJSON(w, http.StatusOK, e.Reset())
}

func (s *Server) handleAdminUpdate(w http.ResponseWriter, r *http.Request) {
	var patch admin.Patch
	if err := kit.DecodeJSON(w, r, &patch); err != nil {
		kit.WriteDecodeError(w, r, err)
		return
	}

	e, err := s.editor(r.Context())
	if err != nil {
		s.writeShopError(w, r, err)
		return
	}

	id := chi.URLParam(r, "id")
	p, err := e.Update(id, patch)
	if err != nil {
		s.writeAdminError(w, r, id, err)
		return
	}

	claims, _ := auth.ClaimsFromContext(r.Context())
	s.Log.Info("admin product edited", zap.String("product_id", id), zap.String("admin", claims.Email))
	kit.WriteJSON(w, http.StatusOK, p)
}

func (s *Server) handleAdminRevert(w http.ResponseWriter, r *http.Request) {
	e, err := s.editor(r.Context())
	if err != nil {
		s.writeShopError(w, r, err)
		return
	}

	id := chi.URLParam(r, "id")
	p, err := e.Revert(id)
	if err != nil {
		s.writeAdminError(w, r, id, err)
		return
	}
	kit.WriteJSON(w, http.StatusOK, p)
}

func (s *Server) handleAdminSave(w http.ResponseWriter, r *http.Request) {
	e, err := s.editor(r.Context())
	if err != nil {
		s.writeShopError(w, r, err)
		return
	}
	kit.WriteJSON(w, http.StatusOK, e.SaveAll())
}

func (s *Server) handleAdminExport(w http.ResponseWriter, r *http.Request) {
	e, err := s.editor(r.Context())
	if err != nil {
		s.writeShopError(w, r, err)
		return
	}

	b, err := e.Export()
	if err != nil {
		s.writeShopError(w, r, err)
		return
	}
	w.Header().Set("X-Notice", admin.ExportedNotice)
	kit.WriteAttachment(w, admin.ExportedName, "application/json", b)
}

func (s *Server) writeAdminError(w http.ResponseWriter, r *http.Request, id string, err error) {
	if errors.Is(err, admin.ErrUnknownProduct) {
		kit.WriteError(w, r, http.StatusNotFound, "product not found", map[string]string{"id": id})
		return
	}
	kit.WriteError(w, r, http.StatusBadRequest, err.Error(), map[string]string{"id": id})
}
