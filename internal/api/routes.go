package api

import (
	"log/slog"
	"net/http"

	"github.com/joao-fontenele/storefront/internal/inventory"
	"github.com/joao-fontenele/storefront/internal/orders"
	"github.com/joao-fontenele/storefront/internal/users"
)

// Handlers are the resource handlers the routes are served by.
type Handlers struct {
	Orders    *orders.Handler
	Inventory *inventory.Handler
	Users     *users.Handler
}

// Middleware wraps every registered handler, e.g. telemetry.WithHTTPRoute.
type Middleware func(http.HandlerFunc) http.HandlerFunc

// NewDispatcherFor builds the /api action table.
func NewDispatcherFor(h Handlers, logger *slog.Logger) *Dispatcher {
	d := NewDispatcher(logger)

	d.Default(http.MethodGet, h.Inventory.HandleList)
	d.Handle(http.MethodGet, ActionGetProduct, h.Inventory.HandleGet)
	d.Handle(http.MethodGet, ActionGetUserOrders, h.Orders.HandleUserOrders)
	d.Handle(http.MethodGet, ActionGetUserOrderCount, h.Orders.HandleUserOrderCount)
	d.Handle(http.MethodGet, ActionGetDiscountOrder, h.Orders.HandleGetDiscountOrder)
	d.Handle(http.MethodGet, ActionGetDiscountCodes, h.Orders.HandleListDiscountCodes)
	d.Handle(http.MethodGet, ActionGetAllOrders, h.Orders.HandleListOrders)
	d.Handle(http.MethodGet, ActionGetUsers, h.Users.HandleListCustomers)
	d.Handle(http.MethodGet, ActionGetAllUsers, h.Users.HandleListAll)

	d.Default(http.MethodPost, h.Inventory.HandleCreate)
	d.Handle(http.MethodPost, ActionLogin, h.Users.HandleLogin)
	d.Handle(http.MethodPost, ActionCreateUser, h.Users.HandleSignup)
	d.Handle(http.MethodPost, ActionCheckout, h.Orders.HandleCheckout)
	d.Handle(http.MethodPost, ActionGenerateDiscountCode, h.Orders.HandleGenerateDiscountCode)
	d.Handle(http.MethodPost, ActionSetDiscountOrder, h.Orders.HandleSetDiscountOrder)

	d.Default(http.MethodPut, h.Inventory.HandleUpdate)
	d.Default(http.MethodDelete, h.Inventory.HandleDelete)

	return d
}

// Register mounts the resource routes and the /api endpoint on mux.
func Register(mux *http.ServeMux, h Handlers, logger *slog.Logger, wrap Middleware) {
	if wrap == nil {
		wrap = func(next http.HandlerFunc) http.HandlerFunc { return next }
	}

	mux.HandleFunc("POST /checkout", wrap(h.Orders.HandleCheckout))
	mux.HandleFunc("POST /discount-codes/eligibility", wrap(h.Orders.HandleGenerateDiscountCode))
	mux.HandleFunc("GET /discount-codes", wrap(h.Orders.HandleListDiscountCodes))
	mux.HandleFunc("GET /settings/discount-order", wrap(h.Orders.HandleGetDiscountOrder))
	mux.HandleFunc("PUT /settings/discount-order", wrap(h.Orders.HandleSetDiscountOrder))
	mux.HandleFunc("GET /orders", wrap(h.Orders.HandleListOrders))
	mux.HandleFunc("GET /users/{userId}/orders", wrap(h.Orders.HandleUserOrders))
	mux.HandleFunc("GET /users/{userId}/order-count", wrap(h.Orders.HandleUserOrderCount))

	mux.HandleFunc("GET /products", wrap(h.Inventory.HandleList))
	mux.HandleFunc("POST /products", wrap(h.Inventory.HandleCreate))
	mux.HandleFunc("GET /products/{productId}", wrap(h.Inventory.HandleGet))
	mux.HandleFunc("PUT /products/{productId}", wrap(h.Inventory.HandleUpdate))
	mux.HandleFunc("DELETE /products/{productId}", wrap(h.Inventory.HandleDelete))

	mux.HandleFunc("POST /users", wrap(h.Users.HandleSignup))
	mux.HandleFunc("POST /login", wrap(h.Users.HandleLogin))
	mux.HandleFunc("GET /users", wrap(h.Users.HandleListCustomers))
	mux.HandleFunc("GET /users/all", wrap(h.Users.HandleListAll))

	mux.HandleFunc("/api", wrap(NewDispatcherFor(h, logger).ServeHTTP))
}
