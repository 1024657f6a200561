// Package guard decides what a device should see for a given location.
package guard

import (
	"strings"

	"github.com/yamenzk/personal-trainer/internal/models"
)

const (
	LoginPath = "/login"
	HomePath  = "/"
)

type Kind string

const (
	KindLoading  Kind = "loading"
	KindRedirect Kind = "redirect"
	KindLogin    Kind = "login"
	KindWizard   Kind = "wizard"
	KindPage     Kind = "page"
)

// Pages lists the protected routes rendered inside the app chrome.
var Pages = []string{"/", "/profile", "/workout-plans", "/food-plans", "/chat", "/resources", "/store"}

type Input struct {
	Loading       bool
	Authenticated bool
	NeedsSetup    bool
	Path          string
}

type Decision struct {
	Kind   Kind             `json:"view"`
	Target *models.Location `json:"redirect,omitempty"`
	Page   string           `json:"page,omitempty"`
	Chrome bool             `json:"chrome"`
}

// Decide applies the routing table. Unknown paths always go home first so the
// protected-route rules apply on the next evaluation.
func Decide(in Input) Decision {
	path := Normalize(in.Path)
	if path != LoginPath && !IsPage(path) {
		return redirect(models.Location{Path: HomePath})
	}
	if in.Loading {
		return Decision{Kind: KindLoading}
	}

	// An incomplete profile takes over every path, the login page included.
	if in.Authenticated && in.NeedsSetup {
		return Decision{Kind: KindWizard}
	}

	if path == LoginPath {
		if in.Authenticated {
			return redirect(models.Location{Path: HomePath})
		}
		return Decision{Kind: KindLogin}
	}

	if !in.Authenticated {
		from := models.Location{Path: path}
		return redirect(models.Location{Path: LoginPath, From: &from})
	}
	return Decision{Kind: KindPage, Page: path, Chrome: true}
}

func IsPage(path string) bool {
	for _, page := range Pages {
		if page == path {
			return true
		}
	}
	return false
}

// Normalize trims whitespace, query strings and trailing slashes.
func Normalize(path string) string {
	path = strings.TrimSpace(path)
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	if len(path) > 1 {
		path = strings.TrimRight(path, "/")
		if path == "" {
			path = "/"
		}
	}
	return path
}

func redirect(to models.Location) Decision {
	return Decision{Kind: KindRedirect, Target: &to}
}
