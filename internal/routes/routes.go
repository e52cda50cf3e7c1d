package routes

import (
	"net/http"

	"github.com/NikkuRek/denarius/internal/handlers"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"
)

func NewRoutes() *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.Logger)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})

	r.Route("/accounts", func(r chi.Router) {
		r.Get("/", handlers.GetAccountsHandler)
		r.Post("/", handlers.CreateAccountHandler)
		r.Get("/{id}", handlers.GetAccountHandler)
		r.Put("/{id}", handlers.UpdateAccountHandler)
		r.Delete("/{id}", handlers.DeleteAccountHandler)
		r.Post("/{id}/adjust", handlers.AdjustAccountHandler)
	})

	r.Route("/buckets", func(r chi.Router) {
		r.Get("/", handlers.GetBucketsHandler)
		r.Post("/", handlers.CreateBucketHandler)
		r.Get("/{id}", handlers.GetBucketHandler)
		r.Put("/{id}", handlers.UpdateBucketHandler)
		r.Delete("/{id}", handlers.DeleteBucketHandler)
		r.Post("/{id}/adjust", handlers.AdjustBucketHandler)
	})

	r.Route("/transactions", func(r chi.Router) {
		r.Get("/", handlers.GetTransactionsHandler)
		r.Post("/", handlers.CreateTransactionHandler)
		r.Put("/{id}", handlers.UpdateTransactionHandler)
		r.Delete("/{id}", handlers.DeleteTransactionHandler)
	})

	r.Post("/transfers", handlers.TransferHandler)
	r.Post("/settlements", handlers.SettleHandler)
	r.Post("/sync", handlers.SyncHandler)

	r.Get("/swagger/*", httpSwagger.WrapHandler)

	return r
}
