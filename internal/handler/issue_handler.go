package handler

import (
	"github.com/gofiber/fiber/v2"

	"github.com/kirankjolly/AI-GitHub-Repository-Issue-Scanner/internal/models"
	"github.com/kirankjolly/AI-GitHub-Repository-Issue-Scanner/internal/service"
)

// IssueHandler wires HTTP → IssueService.
type IssueHandler struct {
	svc service.IssueService
}

// NewIssueHandler creates a new IssueHandler.
func NewIssueHandler(svc service.IssueService) *IssueHandler {
	return &IssueHandler{svc: svc}
}

// Register mounts the scan, analyze and cache read routes on the supplied router.
func (h *IssueHandler) Register(r fiber.Router) {
	r.Post("/scan", h.scan)
	r.Post("/analyze", h.analyze)
	r.Get("/repos/:owner/:name", h.getScan)
	r.Get("/repos/:owner/:name/issues", h.getIssues)
}

// scan handles POST /scan
func (h *IssueHandler) scan(c *fiber.Ctx) error {
	var req models.ScanRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	res, err := h.svc.Scan(c.UserContext(), req.Repo)
	if err != nil {
		return httpError(req.Repo, "Error scanning repository", err)
	}
	return c.JSON(res)
}

// analyze handles POST /analyze
func (h *IssueHandler) analyze(c *fiber.Ctx) error {
	var req models.AnalyzeRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	res, err := h.svc.Analyze(c.UserContext(), req.Repo, req.Prompt)
	if err != nil {
		return httpError(req.Repo, "Error analyzing issues", err)
	}
	return c.JSON(res)
}

// getScan handles GET /repos/:owner/:name
func (h *IssueHandler) getScan(c *fiber.Ctx) error {
	repo := c.Params("owner") + "/" + c.Params("name")

	rec, err := h.svc.GetScan(c.UserContext(), repo)
	if err != nil {
		return httpError(repo, "Error reading scan", err)
	}
	return c.JSON(rec)
}

// getIssues handles GET /repos/:owner/:name/issues
func (h *IssueHandler) getIssues(c *fiber.Ctx) error {
	repo := c.Params("owner") + "/" + c.Params("name")

	issues, err := h.svc.ListIssues(c.UserContext(), repo)
	if err != nil {
		return httpError(repo, "Error reading issues", err)
	}
	return c.JSON(issues)
}
