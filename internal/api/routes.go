package api

import (
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"
)

// SetupRoutes registers the control API. metrics may be nil.
func SetupRoutes(handler *Handler, metrics http.Handler) *mux.Router {
	router := mux.NewRouter()
	router.Use(loggingMiddleware)

	api := router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/downloads", handler.GetDownloads).Methods(http.MethodGet)
	api.HandleFunc("/downloads", handler.StartDownload).Methods(http.MethodPost)
	api.HandleFunc("/downloads/playlist", handler.StartPlaylistDownload).Methods(http.MethodPost)
	api.HandleFunc("/downloads/{id}", handler.GetDownload).Methods(http.MethodGet)
	api.HandleFunc("/downloads/{id}", handler.DeleteDownload).Methods(http.MethodDelete)
	api.HandleFunc("/downloads/{id}/cancel", handler.CancelDownload).Methods(http.MethodPost)
	api.HandleFunc("/downloads/{id}/open", handler.OpenFolder).Methods(http.MethodPost)

	if metrics != nil {
		router.Handle("/metrics", metrics).Methods(http.MethodGet)
	}

	return router
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Printf("%s %s %s (%v)", logPrefixAPI, r.Method, r.URL.Path, time.Since(start))
	})
}
