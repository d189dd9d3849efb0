package httpadapter

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/oapi-codegen/runtime"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"walletcat/internal/domain"
	"walletcat/internal/logging"
	"walletcat/internal/ports"
	"walletcat/internal/services/entities"
	"walletcat/internal/services/references"
	"walletcat/internal/services/wallets"
	"walletcat/internal/workers/importrunner"
)

// Imports enables the import endpoints. Only the Postgres store has a queue.
type Imports struct {
	Repo     ports.ImportRepository
	Importer importrunner.CatalogImporter
}

type Server struct {
	wallets  *wallets.Service
	entities *entities.Service
	imports  *Imports
	log      *zap.SugaredLogger
}

// New builds the API server. imports may be nil, in which case the import endpoints answer 501.
func New(walletSvc *wallets.Service, entitySvc *entities.Service, imports *Imports, log *zap.SugaredLogger) *Server {
	return &Server{wallets: walletSvc, entities: entitySvc, imports: imports, log: logging.OrNop(log)}
}

func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.getHealthz)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/wallets", func(r chi.Router) {
		r.Get("/", s.listWallets)
		r.Route("/{walletID}", func(r chi.Router) {
			r.Get("/", s.getWallet)
			r.Get("/features", s.getFeatures)
			r.Get("/attributes/{category}/{attributeID}", s.getAttributeReferences)
			r.Get("/leaks", s.getLeaks)
			r.Get("/audits", s.getAudits)
		})
	})
	r.Get("/entities", s.listEntities)
	r.Get("/entities/{entityID}", s.getEntity)
	r.Post("/imports", s.postImport)
	r.Get("/imports/{importID}", s.getImport)
	return r
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		defer func() {
			s.log.Debugw("request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"requestID", middleware.GetReqID(r.Context()),
			)
		}()
		next.ServeHTTP(ww, r)
	})
}

func (s *Server) getHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) listWallets(w http.ResponseWriter, r *http.Request) {
	out, err := s.wallets.List(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) getWallet(w http.ResponseWriter, r *http.Request) {
	id, err := pathParam(r, "walletID")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	wallet, err := s.wallets.Get(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, wallet)
}

func (s *Server) getFeatures(w http.ResponseWriter, r *http.Request) {
	id, v, err := s.walletAndVariant(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	f, err := s.wallets.Features(r.Context(), id, v)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, f)
}

func (s *Server) getAttributeReferences(w http.ResponseWriter, r *http.Request) {
	id, v, err := s.walletAndVariant(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	category, err := pathParam(r, "category")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	attrID, err := pathParam(r, "attributeID")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	attr, err := references.ParseAttribute(category, attrID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	out, err := s.wallets.AttributeReferences(r.Context(), id, v, attr)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) getLeaks(w http.ResponseWriter, r *http.Request) {
	id, v, err := s.walletAndVariant(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var fieldParam string
	if err := runtime.BindQueryParameter("form", true, true, "field", r.URL.Query(), &fieldParam); err != nil {
		s.writeError(w, r, badRequest(err))
		return
	}
	field, err := domain.ParseLeakField(fieldParam)
	if err != nil {
		s.writeError(w, r, badRequest(err))
		return
	}
	var minParam *string
	if err := runtime.BindQueryParameter("form", true, false, "min", r.URL.Query(), &minParam); err != nil {
		s.writeError(w, r, badRequest(err))
		return
	}
	threshold := domain.LeakOptIn
	if minParam != nil {
		if threshold, err = domain.ParseLeak(*minParam); err != nil {
			s.writeError(w, r, badRequest(err))
			return
		}
	}
	out, err := s.wallets.Leaks(r.Context(), id, v, field, threshold)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) getAudits(w http.ResponseWriter, r *http.Request) {
	id, v, err := s.walletAndVariant(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	out, err := s.wallets.Audits(r.Context(), id, v)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) listEntities(w http.ResponseWriter, r *http.Request) {
	out, err := s.entities.List(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) getEntity(w http.ResponseWriter, r *http.Request) {
	id, err := pathParam(r, "entityID")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	out, err := s.entities.Get(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

type importRequest struct {
	Source string `json:"source"`
}

func (s *Server) postImport(w http.ResponseWriter, r *http.Request) {
	if s.imports == nil {
		s.writeError(w, r, errImportsDisabled)
		return
	}
	var req importRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.writeError(w, r, badRequest(err))
			return
		}
	}
	if _, err := s.imports.Importer.SourceDir(req.Source); err != nil {
		s.writeError(w, r, err)
		return
	}

	var wait bool
	if err := runtime.BindQueryParameter("form", true, false, "wait", r.URL.Query(), &wait); err != nil {
		s.writeError(w, r, badRequest(err))
		return
	}
	timeout := 30
	if err := runtime.BindQueryParameter("form", true, false, "timeout", r.URL.Query(), &timeout); err != nil {
		s.writeError(w, r, badRequest(err))
		return
	}

	imp, err := s.imports.Repo.Enqueue(r.Context(), req.Source)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if !wait {
		writeJSON(w, http.StatusAccepted, imp)
		return
	}
	if timeout <= 0 {
		timeout = 30
	}
	ctx, cancel := context.WithTimeout(r.Context(), time.Duration(timeout)*time.Second)
	defer cancel()
	done, err := importrunner.ProcessInline(ctx, s.imports.Repo, s.imports.Importer, imp.ID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if !done.Done() {
		// timed out; the workers pick it up again
		writeJSON(w, http.StatusAccepted, done)
		return
	}
	writeJSON(w, http.StatusOK, done)
}

func (s *Server) getImport(w http.ResponseWriter, r *http.Request) {
	if s.imports == nil {
		s.writeError(w, r, errImportsDisabled)
		return
	}
	id, err := pathParam(r, "importID")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	imp, err := s.imports.Repo.Get(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, imp)
}

func pathParam(r *http.Request, name string) (string, error) {
	var out string
	err := runtime.BindStyledParameterWithOptions("simple", name, chi.URLParam(r, name), &out,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		return "", badRequest(err)
	}
	return out, nil
}

// walletAndVariant reads the walletID path parameter and the variant, given either as
// ?variant=desktop or in the wallet page form ?desktop.
func (s *Server) walletAndVariant(r *http.Request) (string, domain.Variant, error) {
	id, err := pathParam(r, "walletID")
	if err != nil {
		return "", "", err
	}
	var raw *string
	if err := runtime.BindQueryParameter("form", true, false, "variant", r.URL.Query(), &raw); err != nil {
		return "", "", badRequest(err)
	}
	if raw != nil && *raw != "" {
		v, err := domain.ParseVariant(*raw)
		if err != nil {
			return "", "", err
		}
		return id, v, nil
	}
	q := r.URL.Query()
	for _, v := range domain.AllVariants {
		if q.Has(string(v)) && q.Get(string(v)) == "" {
			picked, err := s.wallets.VariantFromQuery(r.Context(), id, string(v))
			return id, picked, err
		}
	}
	return id, "", nil
}
