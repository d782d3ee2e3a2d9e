package middleware

import "strings"

// Route metadata drives the guard chain. Instead of annotations on
// handlers, an explicit table is built at startup: controller-level
// entries keyed by route-group prefix and handler-level entries
// keyed by method plus registered path. At dispatch time each field
// resolves independently with the handler value, when present,
// overriding the controller value. This lets a controller be
// globally public while one handler inside it still demands login,
// and vice versa.
type RouteMeta struct {
	skipLogin          *bool
	requireLogin       *bool
	requirePermissions []string
}

// MetaOption mutates a RouteMeta during registration.
type MetaOption func(*RouteMeta)

// SkipLogin marks a route or controller as reachable without a
// token, unless overridden by RequireLogin closer to the handler.
func SkipLogin() MetaOption {
	return func(m *RouteMeta) { t := true; m.skipLogin = &t }
}

// RequireLogin forces authentication even inside a skip-login
// controller.
func RequireLogin() MetaOption {
	return func(m *RouteMeta) { t := true; m.requireLogin = &t }
}

// RequirePermissions lists capability codes the caller must all
// hold (AND semantics).
func RequirePermissions(codes ...string) MetaOption {
	return func(m *RouteMeta) { m.requirePermissions = codes }
}

// ResolvedMeta is the effective metadata for one dispatched route.
type ResolvedMeta struct {
	SkipLogin          bool
	RequireLogin       bool
	RequirePermissions []string
}

// MetaRegistry is the startup-built metadata table consulted by the
// guards. It is written only during route registration and read
// concurrently afterwards, so no locking is needed.
type MetaRegistry struct {
	controllers map[string]RouteMeta // key: group prefix, e.g. "/v1/user"
	handlers    map[string]RouteMeta // key: "GET /v1/user/refresh"
}

func NewMetaRegistry() *MetaRegistry {
	return &MetaRegistry{
		controllers: make(map[string]RouteMeta),
		handlers:    make(map[string]RouteMeta),
	}
}

// Controller records controller-level defaults for every route
// under the given path prefix.
func (r *MetaRegistry) Controller(prefix string, opts ...MetaOption) {
	m := r.controllers[prefix]
	for _, opt := range opts {
		opt(&m)
	}
	r.controllers[prefix] = m
}

// Handler records handler-level metadata for one registered route.
// The path must match the route as registered with Echo, including
// any :param segments.
func (r *MetaRegistry) Handler(method, path string, opts ...MetaOption) {
	key := method + " " + path
	m := r.handlers[key]
	for _, opt := range opts {
		opt(&m)
	}
	r.handlers[key] = m
}

// Resolve computes the effective metadata for a dispatched route.
// The controller entry is the longest registered prefix of the
// path; each handler field overrides the controller field only when
// explicitly set.
func (r *MetaRegistry) Resolve(method, path string) ResolvedMeta {
	var ctrl RouteMeta
	longest := -1
	for prefix, m := range r.controllers {
		if len(prefix) > longest && (path == prefix || strings.HasPrefix(path, prefix+"/")) {
			ctrl = m
			longest = len(prefix)
		}
	}
	h := r.handlers[method+" "+path]

	var out ResolvedMeta
	switch {
	case h.skipLogin != nil:
		out.SkipLogin = *h.skipLogin
	case ctrl.skipLogin != nil:
		out.SkipLogin = *ctrl.skipLogin
	}
	switch {
	case h.requireLogin != nil:
		out.RequireLogin = *h.requireLogin
	case ctrl.requireLogin != nil:
		out.RequireLogin = *ctrl.requireLogin
	}
	if h.requirePermissions != nil {
		out.RequirePermissions = h.requirePermissions
	} else {
		out.RequirePermissions = ctrl.requirePermissions
	}
	return out
}
