// Package server assembles the HTTP router
package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"

	"event-console/internal/handlers"
	"event-console/internal/middleware"
)

// Deps are the handlers and policies the router is built from
type Deps struct {
	Checkout       *handlers.CheckoutHandler
	Invoice        *handlers.InvoiceHandler
	Uploads        *handlers.UploadHandler
	Health         *handlers.HealthHandler
	RateLimiter    *middleware.RateLimiter
	AllowedOrigins []string
	TrustedProxies []string
	Logger         *logrus.Logger
}

// NewRouter wires every route of the console API
func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(middleware.ClientIPMiddleware(d.TrustedProxies))
	r.Use(middleware.LoggingMiddleware(d.Logger))
	r.Use(middleware.ErrorHandlingMiddleware(d.Logger))
	r.Use(middleware.CORSMiddleware(middleware.DefaultCORSConfig(d.AllowedOrigins)))
	r.Use(middleware.SecurityHeadersMiddleware)
	r.Use(chimw.Timeout(30 * time.Second))

	r.NotFound(middleware.NotFoundHandler().ServeHTTP)
	r.MethodNotAllowed(middleware.MethodNotAllowedHandler().ServeHTTP)

	limited := func(h http.HandlerFunc) http.Handler {
		if d.RateLimiter == nil {
			return h
		}
		return d.RateLimiter.Middleware(h)
	}

	r.Get("/health", d.Health.Health)
	r.Get("/events/{eventID}", d.Checkout.GetEvent)

	r.Route("/checkout", func(r chi.Router) {
		r.Get("/", d.Checkout.Get)
		r.Post("/quantity", d.Checkout.ChangeQuantity)
		r.Post("/next", d.Checkout.Next)
		r.Post("/back", d.Checkout.Back)
		r.Put("/details", d.Checkout.UpdateDetails)
		r.Put("/payment-ref", d.Checkout.UpdatePaymentRef)
		r.Method(http.MethodPost, "/submit", limited(d.Checkout.Submit))
		r.Method(http.MethodGet, "/receipt.pdf", limited(d.Checkout.Receipt))
		r.Post("/{eventID}", d.Checkout.Open)
	})

	r.Route("/invoices", func(r chi.Router) {
		r.Route("/draft", func(r chi.Router) {
			r.Post("/", d.Invoice.NewDraft)
			r.Get("/", d.Invoice.Get)
			r.Patch("/", d.Invoice.UpdateHeader)
			r.Post("/columns", d.Invoice.AddColumn)
			r.Delete("/columns/{columnID}", d.Invoice.RemoveColumn)
			r.Post("/items", d.Invoice.AddLineItem)
			r.Delete("/items/{itemID}", d.Invoice.RemoveLineItem)
			r.Patch("/items/{itemID}", d.Invoice.UpdateLineItem)
			r.Put("/items/{itemID}/custom/{columnID}", d.Invoice.SetCustomValue)
			r.Method(http.MethodPost, "/signature", limited(d.Invoice.UploadSignature))
			r.Method(http.MethodPost, "/save", limited(d.Invoice.Save))
			r.Method(http.MethodGet, "/pdf", limited(d.Invoice.ExportPDF))
			r.Get("/upi-qr.png", d.Invoice.UPIQRCode)
		})
		r.Post("/{invoiceID}/edit", d.Invoice.Edit)
	})

	r.Method(http.MethodPost, "/uploads/layouts", limited(d.Uploads.UploadLayout))

	return r
}
