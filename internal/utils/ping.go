package utils

import (
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
)

// PingService issues a GET against serviceURL and expects a 2xx answer.
func PingService(serviceURL string, timeout time.Duration) error {
	agent := fiber.Get(serviceURL).Timeout(timeout)

	code, _, errs := agent.Bytes()
	if len(errs) > 0 {
		return fmt.Errorf("failed to reach %s: %w", serviceURL, errors.Join(errs...))
	}
	if code < fiber.StatusOK || code >= fiber.StatusMultipleChoices {
		return fmt.Errorf("%s answered with status %d", serviceURL, code)
	}

	return nil
}
