package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/brntsllvn/devlunch/internal/models"
	"github.com/brntsllvn/devlunch/internal/repository"
	"github.com/brntsllvn/devlunch/internal/service"
	"github.com/brntsllvn/devlunch/internal/validation"
	"github.com/brntsllvn/devlunch/internal/views"
	"github.com/go-chi/chi/v5"
)

// IndexPath is where successful writes redirect to
const IndexPath = "/restaurant"

// RestaurantHandler handles the restaurant actions. Each request gets its
// own store session, closed before the handler returns.
type RestaurantHandler struct {
	store     repository.Store
	validator *validation.Validator
	views     views.Renderer
	logger    *slog.Logger
}

// NewRestaurantHandler creates a new restaurant handler
func NewRestaurantHandler(store repository.Store, validator *validation.Validator, renderer views.Renderer, logger *slog.Logger) *RestaurantHandler {
	if validator == nil {
		validator = validation.New()
	}
	return &RestaurantHandler{
		store:     store,
		validator: validator,
		views:     renderer,
		logger:    logger,
	}
}

// Mount registers the restaurant routes on r. The guard middlewares wrap
// only the actions that change data.
func (h *RestaurantHandler) Mount(r chi.Router, guard ...func(http.Handler) http.Handler) {
	r.Get("/", h.Index)
	r.Get("/details", h.Details)
	r.Get("/details/{id}", h.Details)
	r.Get("/create", h.CreateForm)
	r.Get("/edit", h.EditForm)
	r.Get("/edit/{id}", h.EditForm)

	r.Group(func(r chi.Router) {
		r.Use(guard...)
		r.Post("/create", h.Create)
		r.Post("/edit", h.Edit)
		r.Post("/edit/{id}", h.Edit)
		r.Get("/delete", h.Delete)
		r.Post("/delete", h.Delete)
		r.Get("/delete/{id}", h.Delete)
		r.Post("/delete/{id}", h.Delete)
	})
}

// Index handles GET /restaurant
func (h *RestaurantHandler) Index(w http.ResponseWriter, r *http.Request) {
	h.withService(w, r, func(svc *service.RestaurantService) {
		restaurants, err := svc.List(r.Context())
		if err != nil {
			h.fail(w, r, "failed to list restaurants", err)
			return
		}
		h.views.Render(w, r, http.StatusOK, views.Index, restaurants)
	})
}

// Details handles GET /restaurant/details/{id}
// - 400: id missing or not an integer
// - 404: no restaurant with that id
func (h *RestaurantHandler) Details(w http.ResponseWriter, r *http.Request) {
	id, ok := h.restaurantID(w, r)
	if !ok {
		return
	}
	h.withService(w, r, func(svc *service.RestaurantService) {
		restaurant, err := svc.Detail(r.Context(), id)
		if err != nil {
			h.fail(w, r, "failed to get restaurant", err)
			return
		}
		h.views.Render(w, r, http.StatusOK, views.Details, restaurant)
	})
}

// CreateForm handles GET /restaurant/create
func (h *RestaurantHandler) CreateForm(w http.ResponseWriter, r *http.Request) {
	h.withService(w, r, func(svc *service.RestaurantService) {
		h.views.Render(w, r, http.StatusOK, views.Create, views.Form{
			Restaurant: svc.CreateForm(),
			Action:     IndexPath + "/create",
		})
	})
}

// Create handles POST /restaurant/create
// Invalid payloads are shown again on the form and nothing is saved.
func (h *RestaurantHandler) Create(w http.ResponseWriter, r *http.Request) {
	payload, err := decodeRestaurant(r)
	if err != nil {
		h.logger.Warn("failed to decode restaurant", "error", err)
		h.views.Error(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}
	payload.ID = 0

	h.withService(w, r, func(svc *service.RestaurantService) {
		err := svc.Create(r.Context(), &payload)
		var verr *validation.Error
		switch {
		case errors.As(err, &verr):
			h.logger.Info("restaurant rejected", "name", payload.Name, "reason", verr.Error())
			h.views.Render(w, r, http.StatusOK, views.Create, views.Form{
				Restaurant: payload,
				Errors:     verr.Messages(),
				Action:     IndexPath + "/create",
			})
		case err != nil:
			h.fail(w, r, "failed to create restaurant", err)
		default:
			h.logger.Info("restaurant created", "restaurant_id", payload.ID, "name", payload.Name)
			http.Redirect(w, r, IndexPath, http.StatusFound)
		}
	})
}

// EditForm handles GET /restaurant/edit/{id}
func (h *RestaurantHandler) EditForm(w http.ResponseWriter, r *http.Request) {
	id, ok := h.restaurantID(w, r)
	if !ok {
		return
	}
	h.withService(w, r, func(svc *service.RestaurantService) {
		restaurant, err := svc.EditForm(r.Context(), id)
		if err != nil {
			h.fail(w, r, "failed to get restaurant", err)
			return
		}
		h.views.Render(w, r, http.StatusOK, views.Edit, views.Form{
			Restaurant: *restaurant,
			Action:     editPath(restaurant.ID),
		})
	})
}

// Edit handles POST /restaurant/edit/{id}
func (h *RestaurantHandler) Edit(w http.ResponseWriter, r *http.Request) {
	id, ok := h.restaurantID(w, r)
	if !ok {
		return
	}
	if id == nil {
		h.fail(w, r, "failed to edit restaurant", service.ErrMissingIdentifier)
		return
	}
	payload, err := decodeRestaurant(r)
	if err != nil {
		h.logger.Warn("failed to decode restaurant", "restaurant_id", *id, "error", err)
		h.views.Error(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}
	payload.ID = *id

	h.withService(w, r, func(svc *service.RestaurantService) {
		updated, err := svc.Edit(r.Context(), id, payload)
		var verr *validation.Error
		switch {
		case errors.As(err, &verr):
			h.logger.Info("restaurant edit rejected", "restaurant_id", *id, "reason", verr.Error())
			h.views.Render(w, r, http.StatusOK, views.Edit, views.Form{
				Restaurant: payload,
				Errors:     verr.Messages(),
				Action:     editPath(*id),
			})
		case err != nil:
			h.fail(w, r, "failed to edit restaurant", err)
		default:
			h.logger.Info("restaurant updated", "restaurant_id", updated.ID, "name", updated.Name)
			http.Redirect(w, r, IndexPath, http.StatusFound)
		}
	})
}

// Delete handles GET and POST /restaurant/delete/{id}
func (h *RestaurantHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.restaurantID(w, r)
	if !ok {
		return
	}
	h.withService(w, r, func(svc *service.RestaurantService) {
		if err := svc.Delete(r.Context(), id); err != nil {
			h.fail(w, r, "failed to delete restaurant", err)
			return
		}
		h.logger.Info("restaurant deleted", "restaurant_id", *id)
		http.Redirect(w, r, IndexPath, http.StatusFound)
	})
}

// withService opens a session for the request and closes it on every path.
func (h *RestaurantHandler) withService(w http.ResponseWriter, r *http.Request, fn func(svc *service.RestaurantService)) {
	session, err := h.store.Open(r.Context())
	if err != nil {
		h.logger.Error("failed to open store session", "error", err)
		h.views.Error(w, r, http.StatusInternalServerError, "Internal server error")
		return
	}
	defer func() {
		if err := session.Close(); err != nil {
			h.logger.Warn("failed to close store session", "error", err)
		}
	}()

	fn(service.NewRestaurantService(session, h.validator))
}

// fail maps service errors to responses
func (h *RestaurantHandler) fail(w http.ResponseWriter, r *http.Request, msg string, err error) {
	switch {
	case errors.Is(err, service.ErrMissingIdentifier):
		h.logger.Warn("restaurant ID is required", "path", r.URL.Path)
		h.views.Error(w, r, http.StatusBadRequest, "Invalid ID supplied")
	case errors.Is(err, repository.ErrRestaurantNotFound):
		h.logger.Info("restaurant not found", "path", r.URL.Path)
		h.views.Error(w, r, http.StatusNotFound, "Restaurant not found")
	default:
		h.logger.Error(msg, "path", r.URL.Path, "error", err)
		h.views.Error(w, r, http.StatusInternalServerError, "Internal server error")
	}
}

// restaurantID reads the id from the route or the query string. A missing id
// is returned as nil so the service can reject it; a malformed one is
// answered with 400 here.
func (h *RestaurantHandler) restaurantID(w http.ResponseWriter, r *http.Request) (*int64, bool) {
	raw := chi.URLParam(r, "id")
	if raw == "" {
		raw = r.URL.Query().Get("id")
	}
	if raw == "" {
		return nil, true
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		h.logger.Warn("invalid restaurant ID format", "id", raw, "error", err)
		h.views.Error(w, r, http.StatusBadRequest, "Invalid ID supplied")
		return nil, false
	}
	return &id, true
}

func editPath(id int64) string {
	return fmt.Sprintf("%s/edit/%d", IndexPath, id)
}

// decodeRestaurant binds a JSON or form encoded restaurant payload.
func decodeRestaurant(r *http.Request) (models.Restaurant, error) {
	var payload models.Restaurant

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			return payload, fmt.Errorf("decode json: %w", err)
		}
		return payload, nil
	}

	if err := r.ParseForm(); err != nil {
		return payload, fmt.Errorf("parse form: %w", err)
	}
	payload.Name = formValue(r, "Name")

	var err error
	if payload.Longitude, err = parseCoordinate(formValue(r, "Longitude")); err != nil {
		return payload, fmt.Errorf("longitude: %w", err)
	}
	if payload.Latitude, err = parseCoordinate(formValue(r, "Latitude")); err != nil {
		return payload, fmt.Errorf("latitude: %w", err)
	}
	return payload, nil
}

// formValue accepts both "Name" and "name" style field names.
func formValue(r *http.Request, field string) string {
	if v := r.PostForm.Get(field); v != "" {
		return v
	}
	return r.PostForm.Get(strings.ToLower(field))
}

// parseCoordinate reads a decimal degree. NaN and infinities are rejected,
// neither the database nor JSON can hold them.
func parseCoordinate(raw string) (float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("coordinate %q is not a finite number", raw)
	}
	return v, nil
}
