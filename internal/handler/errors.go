package handler

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/kirankjolly/AI-GitHub-Repository-Issue-Scanner/internal/github"
	"github.com/kirankjolly/AI-GitHub-Repository-Issue-Scanner/internal/repository"
	"github.com/kirankjolly/AI-GitHub-Repository-Issue-Scanner/internal/service"
)

// ErrorHandler renders every error as {"detail": "..."}.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	msg := err.Error()

	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
		msg = fe.Message
	}
	return c.Status(code).JSON(fiber.Map{"detail": msg})
}

// httpError turns a service error into a *fiber.Error. prefix is prepended to
// messages of server-side failures ("Error scanning repository", ...).
func httpError(repo, prefix string, err error) *fiber.Error {
	code := statusFor(err)
	switch {
	case code == fiber.StatusBadRequest:
		return fiber.NewError(code, err.Error())
	case errors.Is(err, service.ErrNotScanned):
		return fiber.NewError(code, fmt.Sprintf("Repository '%s' has not been scanned. Please run /scan first.", repo))
	case errors.Is(err, service.ErrNoIssues):
		return fiber.NewError(code, fmt.Sprintf("Repository '%s' was scanned but has no open issues to analyze.", repo))
	default:
		return fiber.NewError(code, prefix+": "+err.Error())
	}
}

// statusFor maps every error kind the core can return onto a status class.
func statusFor(err error) int {
	var (
		ve *service.ValidationError
		fe *github.FetchError
		se *repository.StorageError
		ae *service.AnalysisError
	)

	switch {
	case errors.As(err, &ve):
		return fiber.StatusBadRequest

	case errors.Is(err, service.ErrNotScanned), errors.Is(err, service.ErrNoIssues):
		return fiber.StatusNotFound

	case errors.As(err, &fe):
		switch fe.Kind {
		case github.KindInvalidRepoFormat:
			return fiber.StatusBadRequest
		case github.KindNotFound, github.KindAuthFailed, github.KindRateLimitOrForbidden,
			github.KindUpstream, github.KindTimeout, github.KindNetwork:
			return fiber.StatusInternalServerError
		}

	case errors.As(err, &se):
		return fiber.StatusInternalServerError

	case errors.As(err, &ae):
		switch ae.Kind {
		case service.KindAnalysisAuthFailed, service.KindRateLimited, service.KindConnectionFailed,
			service.KindProviderError, service.KindUnexpected:
			return fiber.StatusInternalServerError
		}
	}
	return fiber.StatusInternalServerError
}
