package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/chartdeck/pkg/chart"
	"github.com/matzehuels/chartdeck/pkg/docx"
	"github.com/matzehuels/chartdeck/pkg/errors"
	"github.com/matzehuels/chartdeck/pkg/pipeline"
	"github.com/matzehuels/chartdeck/pkg/session"
)

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	s.renderPage(w, controllerFrom(r.Context()), http.StatusOK, "", "")
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	ctrl := controllerFrom(r.Context())
	raw := r.FormValue("amount")

	amount, err := pipeline.ParseAmount(raw)
	if err != nil {
		s.writeError(w, r, err, raw)
		return
	}

	// Browsers get the page back at once; it refreshes until the batch is
	// done. API clients wait for the result.
	if wantsHTML(r) {
		err := ctrl.Start(s.ctx, amount, func(_ []*chart.Handle, err error) {
			if err != nil && s.ctx.Err() == nil {
				s.logger.Warn("generate failed", "session", ctrl.ID(), "err", err)
			}
		})
		if err != nil {
			s.writeError(w, r, err, raw)
			return
		}
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	if _, err := ctrl.Generate(r.Context(), amount); err != nil {
		s.writeError(w, r, err, raw)
		return
	}
	s.writeJSON(w, http.StatusOK, statusOf(ctrl))
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, statusOf(controllerFrom(r.Context())))
}

func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := errors.ValidateElementID(id); err != nil {
		s.writeError(w, r, err)
		return
	}
	h, ok := controllerFrom(r.Context()).Session().Chart(id)
	if !ok {
		s.writeError(w, r, errors.New(errors.ErrCodeNotFound, "chart %s not found", id))
		return
	}

	var buf bytes.Buffer
	if err := h.Element.WriteSVG(&buf); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	w.Header().Set("Cache-Control", "no-store")
	w.Write(buf.Bytes())
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	res, err := controllerFrom(r.Context()).Export(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", docx.MimeType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s%s"`, res.Filename, docx.Extension))
	w.Header().Set("Content-Length", strconv.Itoa(len(res.Data)))
	w.Write(res.Data)
}

// statusResponse is the JSON body of /status and API generate calls.
type statusResponse struct {
	Session   string   `json:"session"`
	Phase     string   `json:"phase"`
	Done      int      `json:"done"`
	Total     int      `json:"total"`
	Message   string   `json:"message,omitempty"`
	Charts    []string `json:"charts"`
	CanExport bool     `json:"can_export"`
}

func statusOf(ctrl *session.Controller) statusResponse {
	st := ctrl.Status()
	charts := ctrl.Charts()
	ids := make([]string, len(charts))
	for i, h := range charts {
		ids[i] = h.ID()
	}
	return statusResponse{
		Session:   ctrl.ID().String(),
		Phase:     string(st.Phase),
		Done:      st.Done,
		Total:     st.Total,
		Message:   st.Message(),
		Charts:    ids,
		CanExport: ctrl.CanExport(),
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn("encode response", "err", err)
	}
}

// writeError answers with the status for err's code. Browsers get the page
// with the message as a notice; other clients get the message as text.
// amount, if given, is echoed back into the input field.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error, amount ...string) {
	status := statusFor(err)
	msg := errors.UserMessage(err)
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "path", r.URL.Path, "err", err)
	} else {
		s.logger.Debug("request rejected", "path", r.URL.Path, "err", err)
	}

	if wantsHTML(r) {
		if ctrl := controllerFrom(r.Context()); ctrl != nil {
			s.renderPage(w, ctrl, status, msg, strings.Join(amount, ""))
			return
		}
	}
	http.Error(w, msg, status)
}

func statusFor(err error) int {
	switch errors.GetCode(err) {
	case errors.ErrCodeInvalidAmount, errors.ErrCodeInvalidInput, errors.ErrCodeInvalidArgument,
		errors.ErrCodeInvalidKind, errors.ErrCodeInvalidPath:
		return http.StatusBadRequest
	case errors.ErrCodeNoCharts, errors.ErrCodeBusy:
		return http.StatusConflict
	case errors.ErrCodeNotFound, errors.ErrCodeSessionNotFound:
		return http.StatusNotFound
	case errors.ErrCodeUnsupported:
		return http.StatusNotImplemented
	}
	return http.StatusInternalServerError
}

func wantsHTML(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "text/html")
}
