package server

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"hardboiled/config"
	"hardboiled/models"
	"hardboiled/query"
	"hardboiled/readables"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
)

// Feed is the page source behind the HTTP routes
type Feed interface {
	GetFeedPage(ctx context.Context, filter query.Filter, page int, limit int) (*models.PageResult, error)
}

type ServerConfig struct {
	// The feed engine to read pages from
	Feed Feed

	// Feed and HTTP settings
	Config *config.Config
}

// Returns a fiber.App instance serving the readables feed
func Server(cfg *ServerConfig) *fiber.App {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})

	// Middleware to track the latency of each request
	app.Use(func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		log.WithFields(log.Fields{
			"method":    c.Method(),
			"route":     c.Route().Path,
			"status":    c.Response().StatusCode(),
			"requestId": c.GetRespHeader(fiber.HeaderXRequestID),
			"latency":   time.Since(start),
		}).Info("Request")
		return err
	})

	app.Use(requestid.New(requestid.Config{
		Generator: uuid.NewString,
	}))
	app.Use(compress.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.Config.Server.CorsOrigins,
	}))

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// JSON API for the aggregated feed
	app.Get("/api/readables", func(c *fiber.Ctx) error {
		filter := query.Filter{
			TagSlug:    c.Query("tag"),
			AuthorSlug: c.Query("author"),
		}
		page := readables.ParsePage(c.Query("page"))
		limit := readables.ParseLimit(c.Query("limit"), cfg.Config.Feed.DefaultLimit)

		result, err := cfg.Feed.GetFeedPage(c.UserContext(), filter, page, limit)
		if err != nil {
			return sendError(c, err)
		}

		if result.FilterNotFound() {
			return c.Status(fiber.StatusNotFound).JSON(result)
		}
		return c.JSON(result)
	})

	app.Get("/tag/:slug", listing(cfg, "tag"))
	app.Get("/tag/:slug/page/:page", listing(cfg, "tag"))
	app.Get("/author/:slug", listing(cfg, "author"))
	app.Get("/author/:slug/page/:page", listing(cfg, "author"))

	return app
}

// listing serves the tag and author pages. Unknown slugs answer 404. Bad or
// redundant page numbers redirect to the first page and pages past the end
// redirect to the last one.
func listing(cfg *ServerConfig, kind string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		slug := c.Params("slug")

		page := 1
		if param := c.Params("page"); param != "" {
			parsed, err := strconv.Atoi(param)
			if err != nil || parsed <= 1 {
				return c.Redirect(listingURL(kind, slug, 1), fiber.StatusFound)
			}
			page = parsed
		}

		filter := query.Filter{}
		if kind == "tag" {
			filter.TagSlug = slug
		} else {
			filter.AuthorSlug = slug
		}

		result, err := cfg.Feed.GetFeedPage(c.UserContext(), filter, page, cfg.Config.Feed.DefaultLimit)
		if err != nil {
			return sendError(c, err)
		}

		if result.FilterNotFound() {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": fmt.Sprintf("%s %q not found", kind, slug),
			})
		}

		if page > result.Pagination.Pages {
			return c.Redirect(listingURL(kind, slug, result.Pagination.Pages), fiber.StatusFound)
		}

		return c.JSON(result)
	}
}

func listingURL(kind, slug string, page int) string {
	url := "/" + kind + "/" + slug + "/"
	if page > 1 {
		url += "page/" + strconv.Itoa(page) + "/"
	}
	return url
}

func sendError(c *fiber.Ctx, err error) error {
	var classErr *readables.ClassificationError
	switch {
	case errors.As(err, &classErr):
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Error building feed"})
	case errors.Is(err, readables.ErrStoreUnavailable):
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "Store unavailable"})
	default:
		log.WithField("error", err).Error("Unexpected feed error")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Internal Server Error"})
	}
}
