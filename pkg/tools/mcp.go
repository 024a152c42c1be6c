package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"regexp"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/vtcode/vtcode/pkg/vterr"
	"github.com/vtcode/vtcode/pkg/vtlog"
)

// MCPServerConfig names one MCP server to bridge tools from, generalizing
// the teacher's pkg/tools/mcp.go server config into the spec's "plugin
// bridge" concept (C4's list_mcp_tools()).
type MCPServerConfig struct {
	Name    string
	Command string
	Args    []string
	Env     map[string]string
}

const (
	defaultMCPStartupTimeout = 10 * time.Second
	defaultMCPCallTimeout    = 60 * time.Second
	maxMCPToolNameLength     = 64
)

var mcpNameSanitizer = regexp.MustCompile(`[^a-zA-Z0-9_\-]`)

// mcpTool adapts one remote MCP tool to the local Tool interface.
type mcpTool struct {
	localName   string
	remoteName  string
	description string
	schema      json.RawMessage
	session     *mcp.ClientSession
}

func (t *mcpTool) Name() string               { return t.localName }
func (t *mcpTool) Description() string        { return t.description }
func (t *mcpTool) Schema() json.RawMessage     { return t.schema }
func (t *mcpTool) DefaultPolicy() Policy       { return Policy{Destructive: false, Idempotent: false} }

func (t *mcpTool) Execute(ctx context.Context, sc SessionContext, args json.RawMessage) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, defaultMCPCallTimeout)
	defer cancel()

	var argMap map[string]any
	if len(args) > 0 {
		if err := json.Unmarshal(args, &argMap); err != nil {
			return "", vterr.Wrap(vterr.KindToolInvalidArgs, "invalid arguments for mcp tool", err)
		}
	}

	res, err := t.session.CallTool(callCtx, &mcp.CallToolParams{
		Name:      t.remoteName,
		Arguments: argMap,
	})
	if err != nil {
		return "", vterr.Wrap(vterr.KindToolExecutionFailed, "mcp call failed", err)
	}

	var out string
	for _, c := range res.Content {
		if tc, ok := c.(*mcp.TextContent); ok {
			out += tc.Text
		}
	}
	if res.IsError {
		return "", vterr.New(vterr.KindToolExecutionFailed, out)
	}
	return out, nil
}

// LoadMCPTools connects to each configured MCP server and returns bridged
// Tool instances with sanitized, deduplicated local names, matching the
// teacher's loadMCPServerTools aggregation behavior (per-server failures are
// collected rather than aborting the whole load).
func LoadMCPTools(ctx context.Context, servers []MCPServerConfig) ([]Tool, error) {
	log := vtlog.For("tools.mcp")
	var out []Tool
	seen := make(map[string]struct{})
	var errs []error

	for _, srv := range servers {
		tools, err := loadOneMCPServer(ctx, srv)
		if err != nil {
			log.Warn().Str("server", srv.Name).Err(err).Msg("mcp server load failed")
			errs = append(errs, err)
			continue
		}
		for _, t := range tools {
			name := t.Name()
			base := name
			for i := 2; ; i++ {
				if _, dup := seen[name]; !dup {
					break
				}
				name = fmt.Sprintf("%s_%d", base, i)
			}
			seen[name] = struct{}{}
			if mt, ok := t.(*mcpTool); ok {
				mt.localName = name
			}
			out = append(out, t)
		}
	}

	if len(errs) > 0 && len(out) == 0 {
		return nil, vterr.Wrap(vterr.KindToolExecutionFailed, "all mcp servers failed to load", errs[0])
	}
	return out, nil
}

func loadOneMCPServer(ctx context.Context, srv MCPServerConfig) ([]Tool, error) {
	startupCtx, cancel := context.WithTimeout(ctx, defaultMCPStartupTimeout)
	defer cancel()

	client := mcp.NewClient(&mcp.Implementation{Name: "vtcode", Version: "0.1.0"}, nil)
	transport := &mcp.CommandTransport{Command: buildCommand(srv)}
	session, err := client.Connect(startupCtx, transport, nil)
	if err != nil {
		return nil, vterr.Wrap(vterr.KindToolExecutionFailed, "mcp connect failed", err)
	}

	listed, err := session.ListTools(startupCtx, &mcp.ListToolsParams{})
	if err != nil {
		return nil, vterr.Wrap(vterr.KindToolExecutionFailed, "mcp list_tools failed", err)
	}

	out := make([]Tool, 0, len(listed.Tools))
	for _, rt := range listed.Tools {
		schema, _ := json.Marshal(rt.InputSchema)
		name := sanitizeMCPName(srv.Name + "_" + rt.Name)
		out = append(out, &mcpTool{
			localName:   name,
			remoteName:  rt.Name,
			description: rt.Description,
			schema:      schema,
			session:     session,
		})
	}
	return out, nil
}

func buildCommand(srv MCPServerConfig) *exec.Cmd {
	cmd := exec.Command(srv.Command, srv.Args...)
	if len(srv.Env) > 0 {
		env := os.Environ()
		for k, v := range srv.Env {
			env = append(env, k+"="+v)
		}
		cmd.Env = env
	}
	return cmd
}

func sanitizeMCPName(name string) string {
	sanitized := mcpNameSanitizer.ReplaceAllString(name, "_")
	if len(sanitized) > maxMCPToolNameLength {
		sanitized = sanitized[:maxMCPToolNameLength]
	}
	return sanitized
}
