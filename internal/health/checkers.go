package health

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/etherlabsio/healthcheck/v2"
)

// UpstreamChecker reports the upstream as unhealthy when it can't be reached.
// Any response, regardless of its status code, means that the upstream is reachable
func UpstreamChecker(client *http.Client, url string) healthcheck.CheckerFunc {
	return func(ctx context.Context) error {
		request, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
		if err != nil {
			return err
		}

		done := make(chan error, 1)
		go func() {
			response, err := client.Do(request)
			if err == nil {
				_ = response.Body.Close()
			}

			done <- err
		}()

		select {
		case <-ctx.Done():
			return errors.New("check timeout")
		case err := <-done:
			if err != nil {
				return fmt.Errorf("%s is unreachable: %w", url, err)
			}

			return nil
		}
	}
}
