package middleware

import (
	"fmt"
	"net/http"
	"regexp"
	"sort"
	"time"

	"credhub/internal/common"

	"github.com/labstack/echo/v4"
)

const (
	VersionActive     = "active"
	VersionDeprecated = "deprecated"
	VersionSunset     = "sunset"
)

// APIVersion describes one published API version.
type APIVersion struct {
	Version    string     `json:"version"`
	Status     string     `json:"status"`
	SunsetDate *time.Time `json:"sunset_date,omitempty"`
	Message    string     `json:"message,omitempty"`
}

var versionPrefix = regexp.MustCompile(`^/(v[1-9][0-9]*)(/|$)`)

type VersionMiddleware struct {
	versions       map[string]APIVersion
	defaultVersion string
}

func NewVersionMiddleware() *VersionMiddleware {
	return &VersionMiddleware{
		versions: map[string]APIVersion{
			"v1": {Version: "v1", Status: VersionActive, Message: "Current stable API version"},
		},
		defaultVersion: "v1",
	}
}

// Register adds or replaces a version entry.
func (vm *VersionMiddleware) Register(v APIVersion) {
	vm.versions[v.Version] = v
}

// Supported lists the versions still served, sorted.
func (vm *VersionMiddleware) Supported() []string {
	var out []string
	for name, v := range vm.versions {
		if v.Status != VersionSunset {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}

// Resolve records the requested version as "api_version" and rejects
// versions that are unknown or past their sunset.
func (vm *VersionMiddleware) Resolve() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			m := versionPrefix.FindStringSubmatch(c.Request().URL.Path)
			if m == nil {
				c.Set("api_version", vm.defaultVersion)
				return next(c)
			}
			if v, ok := vm.versions[m[1]]; !ok || v.Status == VersionSunset {
				return c.JSON(http.StatusNotFound, common.CreateErrorResponse("UNSUPPORTED_VERSION",
					fmt.Sprintf("API version %s is not supported", m[1]),
					map[string]string{"supported_versions": fmt.Sprint(vm.Supported())}))
			}
			c.Set("api_version", m[1])
			return next(c)
		}
	}
}

// Header stamps responses in a version group with X-API-Version and, for a
// deprecated version, the sunset warning.
func (vm *VersionMiddleware) Header(version string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			h := c.Response().Header()
			h.Set("X-API-Version", version)
			if v, ok := vm.versions[version]; ok {
				if v.Status == VersionDeprecated && v.SunsetDate != nil {
					h.Set("X-API-Deprecated", "true")
					h.Set("X-API-Sunset", v.SunsetDate.Format(time.RFC3339))
					h.Set("Warning", fmt.Sprintf(`299 credhub "API %s will be removed on %s"`, version, v.SunsetDate.Format("2006-01-02")))
				}
				if v.Message != "" {
					h.Set("X-API-Message", v.Message)
				}
			}
			return next(c)
		}
	}
}

// Group mounts a version-prefixed route group with the version header.
func (vm *VersionMiddleware) Group(e *echo.Echo, version string, m ...echo.MiddlewareFunc) *echo.Group {
	return e.Group("/"+version, append([]echo.MiddlewareFunc{vm.Header(version)}, m...)...)
}
