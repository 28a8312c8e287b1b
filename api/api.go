// Package api exposes the flow editor backend over HTTP.
package api

import (
	"errors"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v3"

	"github.com/meikuraledutech/chatflow"
)

// Server holds the collaborators the HTTP handlers use.
type Server struct {
	kinds     *chatflow.Registry
	validator *chatflow.Validator
	store     *chatflow.Store
	logger    *slog.Logger
}

// New returns a fiber app serving the flow API.
func New(kinds *chatflow.Registry, store *chatflow.Store, logger *slog.Logger) *fiber.App {
	if kinds == nil {
		kinds = chatflow.DefaultKinds()
	}
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		kinds:     kinds,
		validator: chatflow.NewValidator(kinds),
		store:     store,
		logger:    logger,
	}

	app := fiber.New()
	app.Use(s.logRequests)

	// ── Editor helpers ────────────────────────────────────────────────
	app.Get("/kinds", s.listKinds)
	app.Post("/nodes", s.createNode)
	app.Post("/nodes/check", s.checkNode)
	app.Post("/validate", s.validate)
	app.Post("/statistics", s.statistics)

	// ── Flows ─────────────────────────────────────────────────────────
	app.Get("/flows", s.listFlows)
	app.Post("/flows", s.saveFlow)
	app.Get("/flows/:id", s.getFlow)
	app.Put("/flows/:id", s.updateFlow)
	app.Delete("/flows/:id", s.deleteFlow)

	return app
}

func (s *Server) logRequests(c fiber.Ctx) error {
	start := time.Now()
	err := c.Next()

	status := c.Response().StatusCode()
	var fe *fiber.Error
	if errors.As(err, &fe) {
		status = fe.Code
	}
	s.logger.Info("request",
		"method", c.Method(),
		"path", c.Path(),
		"status", status,
		"duration", time.Since(start),
	)
	return err
}

func (s *Server) listKinds(c fiber.Ctx) error {
	return c.JSON(s.kinds.Kinds())
}

func (s *Server) createNode(c fiber.Ctx) error {
	var req createNodeRequest
	if ok, err := bind(c, &req); !ok {
		return err
	}

	g := chatflow.NewGraph(s.kinds)
	node, err := g.AddNode(req.Kind, req.Position, req.Data)
	if errors.Is(err, chatflow.ErrUnknownKind) {
		return c.Status(422).JSON(fiber.Map{"error": err.Error()})
	}
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": err.Error()})
	}
	return c.Status(201).JSON(node)
}

// checkNode runs the kind rules for a single node, the check the editor
// makes while a node's panel is open.
func (s *Server) checkNode(c fiber.Ctx) error {
	var req checkNodeRequest
	if ok, err := bind(c, &req); !ok {
		return err
	}

	if err := s.kinds.CheckNode(req.Node); err != nil {
		return c.Status(422).JSON(fiber.Map{"valid": false, "error": err.Error()})
	}
	return c.JSON(fiber.Map{"valid": true})
}

func (s *Server) validate(c fiber.Ctx) error {
	var req graphRequest
	if ok, err := bind(c, &req); !ok {
		return err
	}
	return c.JSON(s.validator.Validate(req.Nodes, req.Edges))
}

func (s *Server) statistics(c fiber.Ctx) error {
	var req graphRequest
	if ok, err := bind(c, &req); !ok {
		return err
	}
	return c.JSON(chatflow.Statistics(req.Nodes, req.Edges))
}

func (s *Server) listFlows(c fiber.Ctx) error {
	return c.JSON(s.store.List(c.Context()))
}

func (s *Server) saveFlow(c fiber.Ctx) error {
	var req saveFlowRequest
	if ok, err := bind(c, &req); !ok {
		return err
	}

	verdict := s.validator.Validate(req.Nodes, req.Edges)
	if !verdict.IsValid {
		return c.Status(422).JSON(verdict)
	}

	id := s.store.Save(c.Context(), req.Name, req.Nodes, req.Edges)
	return c.Status(201).JSON(fiber.Map{"id": id, "verdict": verdict})
}

func (s *Server) getFlow(c fiber.Ctx) error {
	f, err := s.store.Load(c.Context(), c.Params("id"))
	if errors.Is(err, chatflow.ErrFlowNotFound) {
		return c.Status(404).JSON(fiber.Map{"error": "flow not found"})
	}
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(f)
}

func (s *Server) updateFlow(c fiber.Ctx) error {
	var req graphRequest
	if ok, err := bind(c, &req); !ok {
		return err
	}

	verdict := s.validator.Validate(req.Nodes, req.Edges)
	if !verdict.IsValid {
		return c.Status(422).JSON(verdict)
	}

	err := s.store.Update(c.Context(), c.Params("id"), req.Nodes, req.Edges)
	if errors.Is(err, chatflow.ErrFlowNotFound) {
		return c.Status(404).JSON(fiber.Map{"error": "flow not found"})
	}
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": err.Error()})
	}
	return c.SendStatus(204)
}

func (s *Server) deleteFlow(c fiber.Ctx) error {
	s.store.Delete(c.Context(), c.Params("id"))
	return c.SendStatus(204)
}
