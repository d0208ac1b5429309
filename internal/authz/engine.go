package authz

import (
	"context"
	"errors"
	"net/http"
	"sort"
	"strings"

	"github.com/lumina-cms/lumina-cms/internal/token"
)

// Denial is the structured explanation for a rejected authorization decision.
// Required and Missing are set only for insufficient-permission denials.
type Denial struct {
	Status   int      `json:"status"`
	Message  string   `json:"message"`
	Required []string `json:"required,omitempty"`
	Missing  []string `json:"missing,omitempty"`
}

// Engine is the single choke point converting (authorization header,
// requirement) into ALLOW or DENY. Checks run in fixed order and
// short-circuit on first failure: token, identity, account status,
// requirement. A non-nil error return is a store fault, never a decision.
type Engine struct {
	codec *token.Codec
	store Store
}

// NewEngine constructs an Engine.
func NewEngine(codec *token.Codec, store Store) *Engine {
	return &Engine{codec: codec, store: store}
}

// AuthorizePermissions allows the request iff every required permission is in
// the principal's aggregated set (AND semantics). The denial enumerates the
// missing permissions.
func (e *Engine) AuthorizePermissions(ctx context.Context, header string, required []string) (*Principal, *Denial, error) {
	principal, denial, err := e.identify(ctx, header)
	if denial != nil || err != nil {
		return nil, denial, err
	}

	normalized := normalize(required)
	granted := make(map[string]struct{})
	for perm := range principal.Permissions() {
		granted[strings.ToLower(perm)] = struct{}{}
	}
	var missing []string
	for _, perm := range normalized {
		if _, ok := granted[perm]; !ok {
			missing = append(missing, perm)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return nil, &Denial{
			Status:   http.StatusForbidden,
			Message:  "insufficient permissions",
			Required: normalized,
			Missing:  missing,
		}, nil
	}
	return principal, nil, nil
}

// AuthorizeRoles allows the request iff the principal holds at least one of
// the allowed roles (OR semantics).
func (e *Engine) AuthorizeRoles(ctx context.Context, header string, allowed []string) (*Principal, *Denial, error) {
	principal, denial, err := e.identify(ctx, header)
	if denial != nil || err != nil {
		return nil, denial, err
	}

	normalized := normalize(allowed)
	if len(normalized) == 0 {
		return principal, nil, nil
	}
	for _, role := range principal.Roles {
		for _, name := range normalized {
			if strings.EqualFold(role.Name, name) {
				return principal, nil, nil
			}
		}
	}
	return nil, &Denial{
		Status:   http.StatusForbidden,
		Message:  "missing required role",
		Required: normalized,
	}, nil
}

// identify runs the token, identity and status checks common to both modes.
// The status check precedes any requirement check: an inactive account is
// denied even when the route declares no permissions at all.
func (e *Engine) identify(ctx context.Context, header string) (*Principal, *Denial, error) {
	raw, ok := bearerToken(header)
	if !ok {
		return nil, &Denial{Status: http.StatusUnauthorized, Message: "no token"}, nil
	}

	result := e.codec.Verify(raw)
	if !result.Valid() {
		return nil, &Denial{Status: http.StatusUnauthorized, Message: "invalid token"}, nil
	}

	principal, err := e.store.Resolve(ctx, result.Claims.UserID)
	if err != nil {
		if errors.Is(err, ErrPrincipalNotFound) {
			return nil, &Denial{Status: http.StatusUnauthorized, Message: "user not found"}, nil
		}
		return nil, nil, err
	}

	if !principal.Active {
		return nil, &Denial{Status: http.StatusForbidden, Message: "account inactive"}, nil
	}
	return principal, nil, nil
}

// bearerToken extracts the token from an Authorization header value. Absence
// or a non-Bearer scheme both count as "no token".
func bearerToken(header string) (string, bool) {
	header = strings.TrimSpace(header)
	if header == "" {
		return "", false
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	raw := strings.TrimSpace(parts[1])
	if raw == "" {
		return "", false
	}
	return raw, true
}

func normalize(names []string) []string {
	unique := make(map[string]struct{}, len(names))
	for _, n := range names {
		n = strings.TrimSpace(strings.ToLower(n))
		if n == "" {
			continue
		}
		unique[n] = struct{}{}
	}
	normalized := make([]string, 0, len(unique))
	for n := range unique {
		normalized = append(normalized, n)
	}
	sort.Strings(normalized)
	return normalized
}
