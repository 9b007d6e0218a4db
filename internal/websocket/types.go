package websocket

import (
	"github.com/BetterCallFirewall/Cryptoscope/internal/models"
	"github.com/BetterCallFirewall/Cryptoscope/internal/view"
)

// ListEntry is one row of the exchange list.
type ListEntry struct {
	ID       string `json:"id"`
	Method   string `json:"method"`
	Status   int    `json:"status,omitempty"`
	ShortURL string `json:"short_url"`
	Domain   string `json:"domain,omitempty"`
	URL      string `json:"url"`
}

func NewListEntry(e models.Exchange) ListEntry {
	return ListEntry{
		ID:       e.ID,
		Method:   e.Method,
		Status:   e.Status,
		ShortURL: e.ShortURL,
		Domain:   e.Domain,
		URL:      e.URL,
	}
}

// ExchangeListDTO - список захваченных обменов со счётчиком
type ExchangeListDTO struct {
	Count     int         `json:"count"`
	Exchanges []ListEntry `json:"exchanges"`
}

type EnvironmentDTO struct {
	Current      string   `json:"current"`
	Environments []string `json:"environments"`
}

// ViewToggledDTO is sent after a field switched between raw and decrypted.
type ViewToggledDTO struct {
	ExchangeID   string            `json:"exchange_id,omitempty"`
	Presentation view.Presentation `json:"presentation"`
}
