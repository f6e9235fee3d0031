package handlers

import (
	"fmt"
	"net/http"

	"github.com/gorilla/sessions"

	"event-console/internal/models"
)

const (
	sessionName = "event-console"
	checkoutKey = "checkout"
	invoiceKey  = "invoice"
)

// DraftStore keeps each visitor's checkout and invoice drafts in their
// session. Drafts are gob encoded, see models.RegisterGobTypes.
type DraftStore struct {
	store sessions.Store
}

// NewDraftStore creates a draft store over a gorilla session store
func NewDraftStore(store sessions.Store) *DraftStore {
	return &DraftStore{store: store}
}

func (d *DraftStore) session(r *http.Request) (*sessions.Session, error) {
	session, err := d.store.Get(r, sessionName)
	if err != nil {
		// an undecodable cookie yields a fresh session alongside the error
		if session == nil {
			return nil, fmt.Errorf("failed to load session: %w", err)
		}
	}
	return session, nil
}

// Checkout returns the session's checkout draft
func (d *DraftStore) Checkout(r *http.Request) (*models.Checkout, error) {
	session, err := d.session(r)
	if err != nil {
		return nil, err
	}
	c, ok := session.Values[checkoutKey].(*models.Checkout)
	if !ok || c == nil {
		return nil, models.ErrDraftNotFound
	}
	return c, nil
}

// SaveCheckout stores c as the session's checkout draft
func (d *DraftStore) SaveCheckout(w http.ResponseWriter, r *http.Request, c *models.Checkout) error {
	return d.put(w, r, checkoutKey, c)
}

// Invoice returns the session's invoice draft
func (d *DraftStore) Invoice(r *http.Request) (*models.Invoice, error) {
	session, err := d.session(r)
	if err != nil {
		return nil, err
	}
	inv, ok := session.Values[invoiceKey].(*models.Invoice)
	if !ok || inv == nil {
		return nil, models.ErrDraftNotFound
	}
	return inv, nil
}

// SaveInvoice stores inv as the session's invoice draft
func (d *DraftStore) SaveInvoice(w http.ResponseWriter, r *http.Request, inv *models.Invoice) error {
	return d.put(w, r, invoiceKey, inv)
}

func (d *DraftStore) put(w http.ResponseWriter, r *http.Request, key string, value interface{}) error {
	session, err := d.session(r)
	if err != nil {
		return err
	}
	session.Values[key] = value
	if err := session.Save(r, w); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// NewFilesystemStore builds the server-side session store. Drafts can
// outgrow a cookie, so only the session id travels to the client.
func NewFilesystemStore(dir, secret string, maxAge int, secure bool) *sessions.FilesystemStore {
	store := sessions.NewFilesystemStore(dir, []byte(secret))
	store.MaxLength(0)
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
	return store
}
