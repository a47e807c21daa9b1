// Package api exposes the storefront over HTTP: resource routes plus the
// single /api endpoint whose behaviour is chosen by the action query
// parameter.
package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"slices"
	"strings"
)

// Action names one operation reachable through /api?action=.
type Action string

const (
	ActionCheckout             Action = "checkout"
	ActionGenerateDiscountCode Action = "generateDiscountCode"
	ActionSetDiscountOrder     Action = "setDiscountOrder"
	ActionGetDiscountOrder     Action = "getDiscountOrder"
	ActionGetDiscountCodes     Action = "getDiscountCodes"
	ActionGetAllOrders         Action = "getAllOrders"
	ActionGetUserOrders        Action = "getUserOrders"
	ActionGetUserOrderCount    Action = "getUserOrderCount"
	ActionGetProduct           Action = "getProduct"
	ActionCreateUser           Action = "createUser"
	ActionLogin                Action = "login"
	ActionGetUsers             Action = "getUsers"
	ActionGetAllUsers          Action = "getAllUsers"
)

type methodTable struct {
	actions  map[Action]http.HandlerFunc
	fallback http.HandlerFunc
}

// Dispatcher routes a request to the handler registered for its method and
// action. A request without an action goes to the method's default handler;
// an action nobody registered is rejected.
type Dispatcher struct {
	methods map[string]*methodTable
	logger  *slog.Logger
}

func NewDispatcher(logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		methods: make(map[string]*methodTable),
		logger:  logger,
	}
}

func (d *Dispatcher) table(method string) *methodTable {
	t, ok := d.methods[method]
	if !ok {
		t = &methodTable{actions: make(map[Action]http.HandlerFunc)}
		d.methods[method] = t
	}
	return t
}

// Handle registers h for method and action. Registering the same pair twice
// panics, like http.ServeMux does for duplicate patterns.
func (d *Dispatcher) Handle(method string, action Action, h http.HandlerFunc) {
	t := d.table(method)
	if _, dup := t.actions[action]; dup {
		panic("api: duplicate action " + method + " " + string(action))
	}
	t.actions[action] = h
}

// Default registers the handler used when a request carries no action.
func (d *Dispatcher) Default(method string, h http.HandlerFunc) {
	d.table(method).fallback = h
}

func (d *Dispatcher) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	t, ok := d.methods[r.Method]
	if !ok {
		w.Header().Set("Allow", d.allowed())
		d.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	action := Action(r.URL.Query().Get("action"))
	if action == "" {
		if t.fallback == nil {
			d.writeError(w, http.StatusBadRequest, "action is required")
			return
		}
		t.fallback(w, r)
		return
	}

	h, ok := t.actions[action]
	if !ok {
		d.logger.Warn("unknown action", "method", r.Method, "action", action)
		d.writeError(w, http.StatusBadRequest, "unknown action: "+string(action))
		return
	}

	h(w, r)
}

// Actions lists the actions registered for method, sorted.
func (d *Dispatcher) Actions(method string) []Action {
	t, ok := d.methods[method]
	if !ok {
		return nil
	}
	out := make([]Action, 0, len(t.actions))
	for a := range t.actions {
		out = append(out, a)
	}
	slices.Sort(out)
	return out
}

func (d *Dispatcher) allowed() string {
	methods := make([]string, 0, len(d.methods))
	for m := range d.methods {
		methods = append(methods, m)
	}
	slices.Sort(methods)
	return strings.Join(methods, ", ")
}

func (d *Dispatcher) writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(map[string]string{"error": message}); err != nil {
		d.logger.Error("failed to encode error response", "error", err)
	}
}
