package api

import (
	"net/http"

	"github.com/AlexZinkM/rent-collector/internal/handler"

	_ "github.com/AlexZinkM/rent-collector/docs"
	httpSwagger "github.com/swaggo/http-swagger"
)

// SetupRouter sets up router with handlers
func SetupRouter(d handler.Deps) (http.Handler, error) {
	rentHandler, err := handler.NewRentHandler(d)
	if err != nil {
		return nil, err
	}

	mux := http.NewServeMux()

	// Swagger UI
	mux.HandleFunc("/swagger/", httpSwagger.WrapHandler)

	// Keys
	mux.HandleFunc("/keys", rentHandler.Keys)

	// Settings
	mux.HandleFunc("/config", rentHandler.Config)
	mux.HandleFunc("/config/rpc", rentHandler.SetRPCURL)
	mux.HandleFunc("/config/fee-payer", rentHandler.FeePayer)

	// Reclaim
	mux.HandleFunc("/scan", rentHandler.Scan)
	mux.HandleFunc("/runs", rentHandler.Run)

	return mux, nil
}
