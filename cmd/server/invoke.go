package main

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pandeptwidyaop/hostbridge/internal/models"
	"github.com/pandeptwidyaop/hostbridge/internal/services"
)

// errCallFailed makes the process exit non-zero after the envelope is printed.
var errCallFailed = errors.New("call failed")

func invokeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "invoke <call> [json-args]",
		Short: "Run one call locally and print the response envelope",
		Example: `  hostbridge invoke system_get_info
  hostbridge invoke system_execute_command '{"cmd":"ls","args":["-la"]}'`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := loadConfig(cmd)
			dispatcher := newDispatcher(cfg)

			var raw json.RawMessage
			if len(args) == 2 {
				raw = json.RawMessage(args[1])
			}

			resp := dispatcher.Invoke(cmd.Context(), services.Invocation{
				Call:      args[0],
				Args:      raw,
				Transport: models.TransportCLI,
			})
			return printResponse(cmd, resp)
		},
	}
	return cmd
}

func printResponse(cmd *cobra.Command, resp models.InvokeResponse) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	if err := enc.Encode(resp); err != nil {
		return err
	}
	if !resp.OK {
		return fmt.Errorf("%w: %s", errCallFailed, resp.Kind)
	}
	return nil
}
