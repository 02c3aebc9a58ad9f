package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"fitness-directory/backend/internal/config"
	"fitness-directory/backend/internal/domain/address"
	"fitness-directory/backend/internal/domain/contact"
	"fitness-directory/backend/internal/domain/event"
	"fitness-directory/backend/internal/domain/gallery"
	"fitness-directory/backend/internal/domain/owner"
	"fitness-directory/backend/internal/domain/plan"
	"fitness-directory/backend/internal/domain/profile"
	"fitness-directory/backend/internal/middleware"
)

const maxBody = 1 << 20

type RouterDeps struct {
	Cfg       config.Config
	Log       *zap.Logger
	Auth      middleware.TokenVerifier
	Owners    *profile.Service
	Addresses *address.Directory
	Events    *event.Coordinator
	Contacts  *contact.Store
	Plans     *plan.Store
	Gallery   *gallery.Service
}

type itemsReq[T any] struct {
	Items []T `json:"items"`
}

type idsReq struct {
	IDs []string `json:"ids"`
}

// resource is the find/create/edit/delete surface of one owner sub-collection.
type resource[In, Out any] struct {
	find   func(context.Context, owner.Ref) ([]Out, error)
	create func(context.Context, owner.Ref, []In) ([]Out, error)
	edit   func(context.Context, owner.Ref, []In) ([]Out, error)
	delete func(context.Context, owner.Ref, []string) error
}

func NewRouter(d RouterDeps) http.Handler {
	log := d.Log
	if log == nil {
		log = zap.NewNop()
	}
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(middleware.CORS(d.Cfg.AllowedOrigins, log))
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		WriteJSON(w, 200, map[string]any{"ok": true, "ts": time.Now().UTC().Format(time.RFC3339)})
	})

	r.Group(func(pr chi.Router) {
		pr.Use(middleware.WithAuth(d.Auth))

		pr.Get("/v1/me", func(w http.ResponseWriter, r *http.Request) {
			au, _ := middleware.GetAuthUser(r.Context())
			WriteJSON(w, 200, map[string]any{
				"uid":    au.UID,
				"email":  au.Email,
				"claims": au.Claims,
			})
		})

		pr.Route("/v1/{kind}/{ownerId}", func(or chi.Router) {
			or.Use(middleware.RequireOwner("kind", "ownerId"))

			or.Get("/", func(w http.ResponseWriter, r *http.Request) {
				ref, ok := ownerRef(w, r, log)
				if !ok {
					return
				}
				out, err := d.Owners.Get(r.Context(), ref)
				if err != nil {
					FailErr(w, log, err)
					return
				}
				WriteJSON(w, 200, out)
			})

			or.Post("/", func(w http.ResponseWriter, r *http.Request) {
				ref, ok := ownerRef(w, r, log)
				if !ok {
					return
				}
				var in profile.CreateInput
				if !readJSON(w, r, &in) {
					return
				}
				out, err := d.Owners.Create(r.Context(), ref, in)
				if err != nil {
					FailErr(w, log, err)
					return
				}
				WriteJSON(w, 201, out)
			})

			or.Patch("/", func(w http.ResponseWriter, r *http.Request) {
				ref, ok := ownerRef(w, r, log)
				if !ok {
					return
				}
				var in profile.EditInput
				if !readJSON(w, r, &in) {
					return
				}
				out, err := d.Owners.Edit(r.Context(), ref, in)
				if err != nil {
					FailErr(w, log, err)
					return
				}
				WriteJSON(w, 200, out)
			})

			mount(or, "/addresses", log, resource[address.Address, address.Address]{
				find:   d.Addresses.Find,
				create: d.Addresses.Create,
				edit:   d.Addresses.Edit,
				delete: d.Addresses.Delete,
			})
			mount(or, "/events", log, resource[event.Input, event.Event]{
				find:   d.Events.Find,
				create: d.Events.Create,
				edit:   d.Events.Edit,
				delete: d.Events.Delete,
			})
			mount(or, "/contacts", log, resource[contact.Contact, contact.Contact]{
				find:   d.Contacts.Find,
				create: d.Contacts.Create,
				edit:   d.Contacts.Edit,
				delete: d.Contacts.Delete,
			})
			mount(or, "/subscription-plans", log, resource[plan.Plan, plan.Plan]{
				find:   d.Plans.Find,
				create: d.Plans.Create,
				edit:   d.Plans.Edit,
				delete: d.Plans.Delete,
			})

			// ===== Gallery uploads =====
			or.Post("/gallery/upload-urls", func(w http.ResponseWriter, r *http.Request) {
				ref, ok := ownerRef(w, r, log)
				if !ok {
					return
				}
				if d.Gallery == nil {
					Fail(w, 501, "gallery uploads are not configured")
					return
				}
				var in itemsReq[gallery.Request]
				if !readJSON(w, r, &in) {
					return
				}
				out, err := d.Gallery.SignedUploadURLs(r.Context(), ref, in.Items)
				if err != nil {
					FailErr(w, log, err)
					return
				}
				WriteJSON(w, 200, map[string]any{"items": out})
			})
		})
	})

	return r
}

func mount[In, Out any](r chi.Router, path string, log *zap.Logger, res resource[In, Out]) {
	r.Route(path, func(sr chi.Router) {
		sr.Get("/", func(w http.ResponseWriter, r *http.Request) {
			ref, ok := ownerRef(w, r, log)
			if !ok {
				return
			}
			out, err := res.find(r.Context(), ref)
			if err != nil {
				FailErr(w, log, err)
				return
			}
			WriteJSON(w, 200, map[string]any{"items": out})
		})

		sr.Post("/", func(w http.ResponseWriter, r *http.Request) {
			ref, ok := ownerRef(w, r, log)
			if !ok {
				return
			}
			var in itemsReq[In]
			if !readJSON(w, r, &in) {
				return
			}
			out, err := res.create(r.Context(), ref, in.Items)
			if err != nil {
				FailErr(w, log, err)
				return
			}
			WriteJSON(w, 201, map[string]any{"items": out})
		})

		sr.Patch("/", func(w http.ResponseWriter, r *http.Request) {
			ref, ok := ownerRef(w, r, log)
			if !ok {
				return
			}
			var in itemsReq[In]
			if !readJSON(w, r, &in) {
				return
			}
			out, err := res.edit(r.Context(), ref, in.Items)
			if err != nil {
				FailErr(w, log, err)
				return
			}
			WriteJSON(w, 200, map[string]any{"items": out})
		})

		sr.Delete("/", func(w http.ResponseWriter, r *http.Request) {
			ref, ok := ownerRef(w, r, log)
			if !ok {
				return
			}
			var in idsReq
			if !readJSON(w, r, &in) {
				return
			}
			if err := res.delete(r.Context(), ref, in.IDs); err != nil {
				FailErr(w, log, err)
				return
			}
			w.WriteHeader(http.StatusNoContent)
		})
	})
}

func ownerRef(w http.ResponseWriter, r *http.Request, log *zap.Logger) (owner.Ref, bool) {
	kind, err := owner.ParseKind(chi.URLParam(r, "kind"))
	if err != nil {
		FailErr(w, log, err)
		return owner.Ref{}, false
	}
	ref := owner.NewRef(kind, chi.URLParam(r, "ownerId"))
	if err := ref.Validate(); err != nil {
		FailErr(w, log, err)
		return owner.Ref{}, false
	}
	return ref, true
}

func readJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBody)).Decode(v); err != nil {
		Fail(w, 400, "invalid json")
		return false
	}
	return true
}
