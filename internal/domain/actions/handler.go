package actions

import (
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	json "github.com/goccy/go-json"

	"nursery-care-log/internal/middleware"

	"github.com/go-chi/chi/v5"
)

// StateInProgress es el valor de state= que selecciona intervalos abiertos.
const StateInProgress = "action_in_progress"

const maxBodyBytes = 1 << 20

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/actions", func(ar chi.Router) {
		ar.Post("/", createActionHandler(svc))
		ar.Get("/", listActionsHandler(svc))
		ar.Get("/{actionID}", getActionHandler(svc))
		ar.Put("/{actionID}", updateActionHandler(svc))
		ar.Delete("/{actionID}", deleteActionHandler(svc))
	})
}

// actionDoc documenta la forma JSON de una acción (ver wireAction).
type actionDoc struct {
	ID               string         `json:"id"`
	ChildID          string         `json:"child_id"`
	NurseryID        string         `json:"nursery_id"`
	ActionType       string         `json:"action_type" enums:"presence,diaper,care,activity,rest,treatment"`
	StartAgentID     string         `json:"start_agent_id"`
	CompletedAgentID string         `json:"completed_agent_id,omitempty"`
	Comment          string         `json:"comment"`
	CreatedAt        string         `json:"created_at"`
	UpdatedAt        string         `json:"updated_at"`
	Presence         map[string]any `json:"presence,omitempty"`
	Rest             map[string]any `json:"rest,omitempty"`
	Activity         map[string]any `json:"activity,omitempty"`
	Diaper           map[string]any `json:"diaper,omitempty"`
	Care             map[string]any `json:"care,omitempty"`
	Treatment        map[string]any `json:"treatment,omitempty"`
}

// createActionHandler godoc
// @Summary Registrar una acción
// @Description Crea una acción de cuidado. Los intervalos (presence, rest, activity) se crean abiertos; pañal, cuidado y tratamiento quedan registrados. Una presencia o siesta abierta duplicada para el mismo niño y día devuelve 409.
// @Tags actions
// @Accept json
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID del agente"
// @Param Authorization header string false "Bearer token en producción"
// @Param payload body actionDoc true "Acción; fechas RFC3339 en UTC"
// @Success 201 {object} actionDoc
// @Failure 400 {string} string "invalid json / reglas de negocio"
// @Failure 401 {string} string "unauthorized"
// @Failure 409 {string} string "conflict"
// @Router /actions [post]
func createActionHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !authorized(r) {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		a, err := decodeAction(r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		created, err := svc.Create(r.Context(), a)
		if err != nil {
			writeError(w, err)
			return
		}
		writeAction(w, http.StatusCreated, created)
	}
}

// listActionsHandler godoc
// @Summary Listar acciones
// @Description Lista acciones filtradas, ordenadas por inicio descendente.
// @Tags actions
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID del agente"
// @Param Authorization header string false "Bearer token en producción"
// @Param nursery_structures[] query []string false "IDs de guardería" collectionFormat(multi)
// @Param actions[] query []string false "Tipos de acción" collectionFormat(multi)
// @Param children[] query []string false "IDs de niño" collectionFormat(multi)
// @Param agents[] query []string false "IDs de agente (abre o cierra)" collectionFormat(multi)
// @Param start_date_time query string false "Inicio mínimo (RFC3339)"
// @Param end_date_time query string false "Inicio máximo (RFC3339)"
// @Param state query string false "action_in_progress = solo intervalos abiertos"
// @Success 200 {array} actionDoc
// @Failure 400 {string} string "filtros inválidos"
// @Failure 401 {string} string "unauthorized"
// @Failure 500 {string} string "internal error"
// @Router /actions [get]
func listActionsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !authorized(r) {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		filter, err := parseFilter(r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		items, err := svc.List(r.Context(), filter)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, items)
	}
}

// getActionHandler godoc
// @Summary Obtener una acción
// @Tags actions
// @Produce json
// @Param actionID path string true "ID de la acción"
// @Success 200 {object} actionDoc
// @Failure 401 {string} string "unauthorized"
// @Failure 404 {string} string "action not found"
// @Router /actions/{actionID} [get]
func getActionHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !authorized(r) {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		a, err := svc.GetByID(r.Context(), chi.URLParam(r, "actionID"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeAction(w, http.StatusOK, a)
	}
}

// updateActionHandler godoc
// @Summary Actualizar una acción
// @Description Reemplaza la acción (cierre de intervalos o edición). Si updated_at viene informado y no coincide con el guardado devuelve 409.
// @Tags actions
// @Accept json
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID del agente"
// @Param Authorization header string false "Bearer token en producción"
// @Param actionID path string true "ID de la acción"
// @Param payload body actionDoc true "Representación completa"
// @Success 200 {object} actionDoc
// @Failure 400 {string} string "invalid json / reglas de negocio"
// @Failure 401 {string} string "unauthorized"
// @Failure 404 {string} string "action not found"
// @Failure 409 {string} string "conflict"
// @Router /actions/{actionID} [put]
func updateActionHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !authorized(r) {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		a, err := decodeAction(r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		// El path manda sobre el body.
		a.ID = chi.URLParam(r, "actionID")

		updated, err := svc.Update(r.Context(), a)
		if err != nil {
			writeError(w, err)
			return
		}
		writeAction(w, http.StatusOK, updated)
	}
}

// deleteActionHandler godoc
// @Summary Borrar una acción
// @Description Borrado físico, sin estado intermedio.
// @Tags actions
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID del agente"
// @Param Authorization header string false "Bearer token en producción"
// @Param actionID path string true "ID de la acción"
// @Success 204
// @Failure 401 {string} string "unauthorized"
// @Failure 404 {string} string "action not found"
// @Router /actions/{actionID} [delete]
func deleteActionHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !authorized(r) {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		if err := svc.Delete(r.Context(), chi.URLParam(r, "actionID")); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func authorized(r *http.Request) bool {
	claims, ok := middleware.GetClaims(r.Context())
	return ok && strings.TrimSpace(claims.UserID) != ""
}

func decodeAction(r *http.Request) (Action, error) {
	b, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return Action{}, errors.New("invalid body")
	}
	a, err := Unmarshal(b)
	if err != nil {
		if errors.Is(err, ErrUnknownKind) {
			return Action{}, errors.New("unknown action_type")
		}
		return Action{}, errors.New("invalid json")
	}
	return a, nil
}

func parseFilter(r *http.Request) (Filter, error) {
	q := r.URL.Query()
	f := Filter{
		NurseryIDs: multi(q["nursery_structures[]"]),
		ChildIDs:   multi(q["children[]"]),
		AgentIDs:   multi(q["agents[]"]),
	}

	for _, raw := range multi(q["actions[]"]) {
		k, ok := ParseKind(raw)
		if !ok {
			return Filter{}, errors.New("unknown action type: " + raw)
		}
		f.Kinds = append(f.Kinds, k)
	}

	if v := strings.TrimSpace(q.Get("start_date_time")); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return Filter{}, errors.New("start_date_time must be RFC3339")
		}
		f.From = &t
	}
	if v := strings.TrimSpace(q.Get("end_date_time")); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return Filter{}, errors.New("end_date_time must be RFC3339")
		}
		f.To = &t
	}

	switch strings.TrimSpace(q.Get("state")) {
	case "":
	case StateInProgress:
		f.OpenOnly = true
	default:
		return Filter{}, errors.New("unknown state")
	}
	return f, nil
}

// multi limpia valores vacíos y admite listas CSV dentro de un mismo valor.
func multi(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if p := strings.TrimSpace(part); p != "" {
				out = append(out, p)
			}
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrValidation), errors.Is(err, ErrInvalidKind),
		errors.Is(err, ErrWrongKind), errors.Is(err, ErrUnknownKind):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, ErrNotFound):
		http.Error(w, "action not found", http.StatusNotFound)
	case errors.Is(err, ErrConflict), errors.Is(err, ErrOverlap), errors.Is(err, ErrAlreadyClosed):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func writeAction(w http.ResponseWriter, status int, a Action) {
	rec, err := Encode(a)
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, status, rec)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
