package handler

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/abhayprabhakar/Aviratha-Chatbot/internal/catalog"
)

// topN caps the highlight lists in the catalog overview.
const topN = 5

// CatalogSource serves point-in-time views of the knowledge-base catalog.
type CatalogSource interface {
	Snapshot(ctx context.Context) (*catalog.Snapshot, error)
	Rescan(ctx context.Context) (*catalog.Snapshot, error)
}

// RegisterCatalogRoutes attaches the catalog read API to the provided app.
func RegisterCatalogRoutes(app *fiber.App, src CatalogSource) {
	app.Get("/catalog", CatalogOverview(src))
	app.Post("/catalog/scan", CatalogRescan(src))
	app.Get("/catalog/files", CatalogFiles(src))
}

func catalogOverviewPayload(snap *catalog.Snapshot) fiber.Map {
	var totalSize int64
	for _, f := range snap.Files {
		totalSize += f.FileSize
	}
	return fiber.Map{
		"success":      true,
		"scannedAt":    snap.ScannedAt,
		"totalFiles":   len(snap.Files),
		"totalSize":    totalSize,
		"categories":   snap.Categories,
		"largestFiles": snap.TopBySize(topN),
		"longestReads": snap.TopByReadingTime(topN),
	}
}

// CatalogOverview serves the cached catalog snapshot with per-category
// aggregates and highlight lists.
func CatalogOverview(src CatalogSource) fiber.Handler {
	return func(c *fiber.Ctx) error {
		snap, err := src.Snapshot(c.UserContext())
		if err != nil {
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.JSON(catalogOverviewPayload(snap))
	}
}

// CatalogRescan forces a fresh scan regardless of cache age.
func CatalogRescan(src CatalogSource) fiber.Handler {
	return func(c *fiber.Ctx) error {
		snap, err := src.Rescan(c.UserContext())
		if err != nil {
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.JSON(catalogOverviewPayload(snap))
	}
}

// CatalogFiles lists catalog files, optionally filtered by exact category
// and case-insensitive filename search.
func CatalogFiles(src CatalogSource) fiber.Handler {
	return func(c *fiber.Ctx) error {
		snap, err := src.Snapshot(c.UserContext())
		if err != nil {
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		files := snap.Filter(c.Query("category"), c.Query("search"))
		return c.JSON(fiber.Map{
			"success":   true,
			"scannedAt": snap.ScannedAt,
			"files":     files,
		})
	}
}
