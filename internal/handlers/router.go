package handlers

import (
	"net/http"

	"github.com/ivistaz-ecom/Aarna-law-2026/internal/handlers/middleware"
	"github.com/ivistaz-ecom/Aarna-law-2026/internal/logger"
)

// chain applies middlewares in the given order: m1(m2(...(h)))
func chain(h http.Handler, mds ...func(next http.Handler) http.Handler) http.Handler {
	for i := len(mds) - 1; i >= 0; i-- {
		h = mds[i](h)
	}
	return h
}

func NewRouter(leadHandler *LeadHandler, l logger.Logger) http.Handler {
	root := http.NewServeMux()

	root.HandleFunc("POST /api/leads", leadHandler.submit)
	root.HandleFunc("GET /api/leads/token", leadHandler.token)

	return chain(root,
		middleware.LoggerMiddleware(l),
	)
}
