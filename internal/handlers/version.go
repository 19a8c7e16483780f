package handlers

import (
	"github.com/collabtrack/server/pkg/utils"
	"github.com/gofiber/fiber/v2"
)

// Version identifies this build of the collabtrack server. Release builds
// set it through the linker:
//
//	go build -ldflags "-X github.com/collabtrack/server/internal/handlers.Version=1.2.3"
var Version = "dev"

const (
	serviceName = "collabtrack"
	apiVersion  = "v1"
)

type buildInfo struct {
	Service    string `json:"service"`
	Version    string `json:"version"`
	APIVersion string `json:"apiVersion"`
}

// GetVersion is served without a session.
func GetVersion(c *fiber.Ctx) error {
	return utils.Success(c, fiber.StatusOK, buildInfo{
		Service:    serviceName,
		Version:    Version,
		APIVersion: apiVersion,
	})
}
