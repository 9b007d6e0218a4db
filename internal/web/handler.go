package web

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/BetterCallFirewall/Cryptoscope/internal/capture"
	"github.com/BetterCallFirewall/Cryptoscope/internal/codec"
	"github.com/BetterCallFirewall/Cryptoscope/internal/jsonvalue"
	"github.com/BetterCallFirewall/Cryptoscope/internal/models"
	"github.com/BetterCallFirewall/Cryptoscope/internal/storage"
	"github.com/BetterCallFirewall/Cryptoscope/internal/view"
	"github.com/BetterCallFirewall/Cryptoscope/internal/websocket"
)

const maxBodySize = 32 << 20

func (s *Server) handleListExchanges(w http.ResponseWriter, r *http.Request) {
	all := s.session.Store.All()

	res := websocket.ExchangeListDTO{
		Count:     len(all),
		Exchanges: make([]websocket.ListEntry, 0, len(all)),
	}
	for _, e := range all {
		res.Exchanges = append(res.Exchanges, websocket.NewListEntry(e))
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleClearExchanges(w http.ResponseWriter, r *http.Request) {
	s.session.Recorder.Reset()
	s.session.Store.Clear()
	s.session.View.Reset()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleGetExchange(w http.ResponseWriter, r *http.Request) {
	e, ok := s.session.Store.Get(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusNotFound, "exchange not found")
		return
	}
	writeJSON(w, http.StatusOK, e)
}

// Unknown ids leave the selection as it is.
func (s *Server) handleSelectExchange(w http.ResponseWriter, r *http.Request) {
	s.session.Store.Select(chi.URLParam(r, "id"))
	writeJSON(w, http.StatusOK, s.session.View.Snapshot())
}

func (s *Server) handleGetSelection(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.session.View.Snapshot())
}

func (s *Server) handleToggleField(w http.ResponseWriter, r *http.Request) {
	field, ok := view.ParseField(chi.URLParam(r, "field"))
	if !ok {
		writeError(w, http.StatusBadRequest, "unknown field")
		return
	}

	before := s.session.View.Mode(field)
	p := s.session.View.Toggle(field)
	if p.Mode != before {
		s.events.Publish(models.SessionTopic, models.Event{
			Type: models.EventViewToggled,
			Data: websocket.ViewToggledDTO{ExchangeID: s.session.Store.SelectedID(), Presentation: p},
		})
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) environments() websocket.EnvironmentDTO {
	return websocket.EnvironmentDTO{
		Current:      s.session.Keys.Current(),
		Environments: s.session.Keys.Environments(),
	}
}

func (s *Server) handleGetEnvironments(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.environments())
}

type setEnvironmentRequest struct {
	Name string `json:"name"`
}

// Unknown environment names are ignored, the response shows the current one.
func (s *Server) handleSetEnvironment(w http.ResponseWriter, r *http.Request) {
	var req setEnvironmentRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if s.session.Keys.SetEnvironment(req.Name) {
		s.events.Publish(models.SessionTopic, models.Event{
			Type: models.EventEnvironmentChanged,
			Data: s.environments(),
		})
	}
	writeJSON(w, http.StatusOK, s.environments())
}

type decryptRequest struct {
	Text        string `json:"text"`
	Environment string `json:"environment,omitempty"`
}

type decryptResponse struct {
	Value jsonvalue.Value `json:"value"`
	Tree  *jsonvalue.Node `json:"tree,omitempty"`
	Stage codec.Stage     `json:"stage,omitempty"`
	Error string          `json:"error,omitempty"`
}

// handleDecrypt fails open like the panel: on error the input comes back as
// the value, with the failing stage attached.
func (s *Server) handleDecrypt(w http.ResponseWriter, r *http.Request) {
	var req decryptRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var (
		v   jsonvalue.Value
		err error
	)
	if req.Environment != "" {
		key, ok := s.session.Keys.Key(req.Environment)
		if !ok {
			writeError(w, http.StatusBadRequest, "unknown environment")
			return
		}
		v, err = codec.DecryptWithKey(req.Text, key)
	} else {
		v, err = s.session.Codec.Decrypt(req.Text)
	}

	var res decryptResponse
	if err != nil {
		res.Value = jsonvalue.String(req.Text)
		res.Error = err.Error()
		var de *codec.DecodeError
		if errors.As(err, &de) {
			res.Stage = de.Stage
		}
	} else {
		res.Value = v
		if jsonvalue.IsContainer(v) {
			tree := jsonvalue.BuildTree(v)
			res.Tree = &tree
		}
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleCapture(w http.ResponseWriter, r *http.Request) {
	var ev capture.Event
	if err := decodeBody(w, r, &ev); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	captured, err := s.session.Recorder.Observe(r.Context(), ev, nil)
	if err != nil {
		if errors.Is(err, storage.ErrDuplicateExchange) {
			writeError(w, http.StatusConflict, err.Error())
			return
		}
		log.Printf("❌ Failed to capture exchange: %v", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	status := http.StatusAccepted
	if captured {
		status = http.StatusCreated
	}
	writeJSON(w, status, map[string]bool{"captured": captured})
}

func (s *Server) handleImportHAR(w http.ResponseWriter, r *http.Request) {
	res, err := s.session.Recorder.ImportHAR(r.Context(), http.MaxBytesReader(w, r.Body, maxBodySize))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) error {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize)).Decode(dst); err != nil {
		return errors.New("invalid JSON body")
	}
	return nil
}
