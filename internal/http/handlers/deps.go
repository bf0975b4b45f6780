package handlers

import (
	"hellosession/internal/metrics"
	"hellosession/internal/services"
)

type Deps struct {
	AuthHandler     *AuthHandler
	RegisterHandler *RegisterHandler
	PagesHandler    *PagesHandler
	HelloHandler    *HelloHandler
}

func NewDeps(auth *services.AuthService, m *metrics.Metrics) *Deps {
	return &Deps{
		AuthHandler:     &AuthHandler{Auth: auth, Metrics: m},
		RegisterHandler: &RegisterHandler{Auth: auth, Metrics: m},
		PagesHandler:    &PagesHandler{},
		HelloHandler:    &HelloHandler{},
	}
}
