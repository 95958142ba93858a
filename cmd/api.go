package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/invsync/internal/services"
	"github.com/desertthunder/invsync/internal/shared"
)

func (r *Runner) api() *services.APIService {
	client := r.client()
	return services.NewAPIService(client.BaseURL(), client.HTTPClient())
}

// APIGet makes a direct, authenticated GET request to the instance
func (r *Runner) APIGet(ctx context.Context, cmd *cli.Command) error {
	path := cmd.StringArg("path")
	if path == "" {
		return fmt.Errorf("%w: path", shared.ErrMissingArgument)
	}

	r.logger.Info("GET request", "path", path)

	resp, err := r.api().Get(ctx, path)
	if err != nil {
		return err
	}
	return r.writeResponse("GET", path, resp, cmd.Bool("pretty"))
}

// APIPost makes a direct, authenticated POST request to the instance
func (r *Runner) APIPost(ctx context.Context, cmd *cli.Command) error {
	path := cmd.StringArg("path")
	data := cmd.String("data")

	if path == "" {
		return fmt.Errorf("%w: path", shared.ErrMissingArgument)
	}
	if data == "" {
		return fmt.Errorf("%w: --data flag is required", shared.ErrMissingArgument)
	}

	var jsonTest any
	if err := json.Unmarshal([]byte(data), &jsonTest); err != nil {
		return fmt.Errorf("%w: data is not valid JSON: %v", shared.ErrInvalidInput, err)
	}

	r.logger.Info("POST request", "path", path)

	resp, err := r.api().Post(ctx, path, []byte(data))
	if err != nil {
		return err
	}
	return r.writeResponse("POST", path, resp, true)
}

// APIDelete makes a direct, authenticated DELETE request to the instance
func (r *Runner) APIDelete(ctx context.Context, cmd *cli.Command) error {
	path := cmd.StringArg("path")
	if path == "" {
		return fmt.Errorf("%w: path", shared.ErrMissingArgument)
	}

	r.logger.Info("DELETE request", "path", path)

	resp, err := r.api().Delete(ctx, path)
	if err != nil {
		return err
	}
	if resp.OK() && len(resp.Body) == 0 {
		return r.writePlain("✓ DELETE %s (%d)\n", path, resp.StatusCode)
	}
	return r.writeResponse("DELETE", path, resp, true)
}

func (r *Runner) writeResponse(method, path string, resp *services.APIResponse, pretty bool) error {
	if !resp.OK() {
		return services.NewHTTPError(method, path, resp.StatusCode, resp.Body)
	}

	if resp.IsJSON {
		return r.writeJSON(resp.JSONData, pretty)
	}
	if len(resp.Body) == 0 {
		return nil
	}

	if _, err := r.output.Write(resp.Body); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	_, err := r.output.Write([]byte("\n"))
	return err
}
