package main

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
)

func (app *application) routes() http.Handler {
	router := httprouter.New()

	router.NotFound = http.HandlerFunc(app.notFoundErrorResponse)
	router.MethodNotAllowed = http.HandlerFunc(app.methodNotAllowedErrorResponse)

	router.HandlerFunc(http.MethodGet, "/", app.rootHandler)
	router.HandlerFunc(http.MethodGet, "/v1/healthcheck", app.healthCheckHandler)
	router.Handler(http.MethodGet, "/metrics", app.metrics.Handler())

	// users
	router.HandlerFunc(http.MethodPost, "/api/users", app.createUserHandler)
	router.HandlerFunc(http.MethodGet, "/api/users", app.getUsersHandler)
	router.HandlerFunc(http.MethodPost, "/api/login", app.loginUserHandler)

	// blogs
	router.HandlerFunc(http.MethodGet, "/api/blogs", app.getAllBlogsHandler)
	router.HandlerFunc(http.MethodPost, "/api/blogs", app.createBlogHandler)
	router.HandlerFunc(http.MethodGet, "/api/blogs/:id", app.getBlogHandler)
	router.HandlerFunc(http.MethodPut, "/api/blogs/:id", app.updateBlogHandler)
	router.HandlerFunc(http.MethodDelete, "/api/blogs/:id", app.deleteBlogHandler)
	router.HandlerFunc(http.MethodGet, "/api/stats", app.statsHandler)

	return app.recoverPanic(app.metrics.Middleware(app.logRequest(app.enableCORS(app.rateLimit(app.authenticate(router))))))
}
