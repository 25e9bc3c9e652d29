// Package mcp exposes a solo Duality room to MCP clients over stdio, so an
// agent can list levels, play moves and inspect cells.
package mcp

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/vovakirdan/tui-duality/internal/coop"
	"github.com/vovakirdan/tui-duality/internal/games/duality/core"
	"github.com/vovakirdan/tui-duality/internal/input"
	"github.com/vovakirdan/tui-duality/internal/registry"
)

const (
	// serverName identifies this MCP server to clients.
	serverName = "Duality"
	// serverVersion identifies the MCP server version.
	serverVersion = "1.0.0"

	requestTimeout = 5 * time.Second
)

const instructions = `Duality - a two-token cooperative puzzle.

P1 (White, W) walks only on DARK tiles (D). P2 (Black, B) walks only on
LIGHT tiles (L). Only the active token moves; the inactive one turns its
cell into the tile its partner walks on. Collect every target (*) to win.
Switching is refused while both tokens share a cell.

TOOLS:
- level_list: list playable levels
- level_load: start a level
- state: board, moves, active token and targets
- move: move the active token (up/down/left/right)
- switch: make the other token active
- reset: restart the current level
- describe_cell: terrain, occupants and walkability of one cell`

// Config holds the settings of a Server.
type Config struct {
	Player string // name recorded for cleared runs
	Level  string // level opened by the first call, defaults to the first catalog level
	Logger *log.Logger
}

// Server hosts the MCP server around one solo room.
type Server struct {
	mcpServer   *server.MCPServer
	coordinator *coop.Coordinator
	session     coop.SessionID
	cfg         Config
	log         *log.Logger

	mu     sync.Mutex
	inRoom bool
}

// New creates a configured MCP server playing through c.
func New(c *coop.Coordinator, cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}
	if cfg.Player == "" {
		cfg.Player = "agent"
	}
	s := &Server{
		coordinator: c,
		session:     coop.NewSessionID(),
		cfg:         cfg,
		log:         logger.WithPrefix("mcp"),
	}
	s.mcpServer = server.NewMCPServer(
		serverName,
		serverVersion,
		server.WithToolCapabilities(false),
		server.WithInstructions(instructions),
	)
	s.registerTools()
	return s
}

// MCPServer returns the underlying MCP server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// Serve starts the MCP server on stdio.
func (s *Server) Serve() error {
	if s == nil || s.mcpServer == nil {
		return fmt.Errorf("MCP server is not configured")
	}
	if err := server.ServeStdio(s.mcpServer); err != nil {
		return fmt.Errorf("serve MCP: %w", err)
	}
	return nil
}

// Close leaves the room.
func (s *Server) Close() {
	s.coordinator.Send(coop.LeaveRoomMsg{SessionID: s.session})
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("level_list",
		mcp.WithDescription("List playable levels in campaign order"),
	), s.handleLevelList)

	s.mcpServer.AddTool(mcp.NewTool("level_load",
		mcp.WithDescription("Start a level, abandoning the current one"),
		mcp.WithString("level",
			mcp.Required(),
			mcp.Description("Level ID from level_list"),
		),
	), s.handleLevelLoad)

	s.mcpServer.AddTool(mcp.NewTool("state",
		mcp.WithDescription("Show the board, move count, active token and targets"),
	), s.handleState)

	s.mcpServer.AddTool(mcp.NewTool("move",
		mcp.WithDescription("Move the active token one cell"),
		mcp.WithString("direction",
			mcp.Required(),
			mcp.Enum("up", "down", "left", "right"),
			mcp.Description("Direction to move"),
		),
		mcp.WithString("intent",
			mcp.Description("Why this move; not used by the game"),
		),
	), s.handleMove)

	s.mcpServer.AddTool(mcp.NewTool("switch",
		mcp.WithDescription("Make the other token active"),
	), s.handleCommand(input.Switch()))

	s.mcpServer.AddTool(mcp.NewTool("reset",
		mcp.WithDescription("Restart the current level"),
	), s.handleCommand(input.Reset()))

	s.mcpServer.AddTool(mcp.NewTool("describe_cell",
		mcp.WithDescription("Describe one cell: base and effective terrain, tokens, target and who may enter"),
		mcp.WithNumber("x",
			mcp.Required(),
			mcp.Description("Column, 0 is the left edge"),
		),
		mcp.WithNumber("y",
			mcp.Required(),
			mcp.Description("Row, 0 is the top edge"),
		),
	), s.handleDescribeCell)
}

// room returns the current room, opening the default level on first use.
func (s *Server) room(ctx context.Context) (coop.RoomView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.inRoom {
		if view, ok := s.coordinator.RoomOf(s.session); ok {
			return view, nil
		}
		s.inRoom = false
	}
	levelID := s.cfg.Level
	if levelID == "" {
		if all := registry.List(); len(all) > 0 {
			levelID = all[0].ID
		}
	}
	return s.open(ctx, levelID)
}

// open starts levelID, creating the room if needed. Must hold mu.
func (s *Server) open(ctx context.Context, levelID string) (coop.RoomView, error) {
	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	if s.inRoom {
		return s.coordinator.LoadLevel(ctx, s.session, levelID)
	}
	view, err := s.coordinator.CreateRoom(ctx, s.session, s.cfg.Player, levelID, true)
	if err != nil {
		return coop.RoomView{}, err
	}
	s.inRoom = true
	s.log.Debug("room opened", "room", view.Code, "level", levelID)
	return view, nil
}

func (s *Server) handleLevelList(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var sb strings.Builder
	for _, info := range registry.List() {
		fmt.Fprintf(&sb, "%s\t%s\t%s\n", info.ID, info.Title, info.Source)
	}
	return mcp.NewToolResultText(sb.String()), nil
}

func (s *Server) handleLevelLoad(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	levelID, err := request.RequireString("level")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if !registry.Exists(levelID) {
		return mcp.NewToolResultError(fmt.Sprintf("unknown level %q, see level_list", levelID)), nil
	}

	// Make sure a room exists so the load replaces its level.
	if _, err := s.room(ctx); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	s.mu.Lock()
	view, err := s.open(ctx, levelID)
	s.mu.Unlock()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(FormatState(view)), nil
}

func (s *Server) handleState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	view, err := s.room(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(FormatState(view)), nil
}

func (s *Server) handleMove(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	dir, err := request.RequireString("direction")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	cmd, ok := input.ParseCommand(strings.ToLower(dir))
	if !ok || cmd.Kind != input.KindMove {
		return mcp.NewToolResultError(fmt.Sprintf("invalid direction %q: use up, down, left or right", dir)), nil
	}
	return s.apply(ctx, cmd)
}

func (s *Server) handleCommand(cmd input.Command) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return s.apply(ctx, cmd)
	}
}

func (s *Server) apply(ctx context.Context, cmd input.Command) (*mcp.CallToolResult, error) {
	if _, err := s.room(ctx); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	view, err := s.coordinator.Command(ctx, s.session, cmd)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(commandSummary(cmd, view) + "\n" + FormatState(view)), nil
}

// commandSummary says what a command did, judged by the cues it produced.
func commandSummary(cmd input.Command, view coop.RoomView) string {
	has := func(cue string) bool {
		for _, c := range view.Cues {
			if c == cue {
				return true
			}
		}
		return false
	}
	switch {
	case has("win"):
		return fmt.Sprintf("%s: LEVEL CLEAR in %d moves.", cmd, view.State.Moves)
	case has("error"):
		return fmt.Sprintf("%s: refused, both tokens share a cell.", cmd)
	case has("collect"):
		return fmt.Sprintf("%s: target collected.", cmd)
	case cmd.Kind == input.KindReset:
		return "reset: level restarted."
	case len(view.Cues) == 0:
		if view.Won {
			return fmt.Sprintf("%s: level already cleared, use reset or level_load.", cmd)
		}
		return fmt.Sprintf("%s: blocked, the active token cannot enter that cell.", cmd)
	default:
		return fmt.Sprintf("%s: ok.", cmd)
	}
}

func (s *Server) handleDescribeCell(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	x, err := request.RequireInt("x")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	y, err := request.RequireInt("y")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	view, err := s.room(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	text, err := DescribeCell(view.Level, view.State, core.P(x, y))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(text), nil
}

// FormatState renders a room for a text client.
func FormatState(view coop.RoomView) string {
	var sb strings.Builder
	title := view.LevelID
	if info, ok := registry.Info(view.LevelID); ok {
		title = fmt.Sprintf("%s (%s)", info.Title, info.ID)
	}
	fmt.Fprintf(&sb, "Level: %s\n", title)
	sb.WriteString(core.RenderASCII(view.Level, view.State))
	if view.Won {
		sb.WriteString("LEVEL CLEAR\n")
	}
	sb.WriteString("Legend: W=P1 White (walks D), B=P2 Black (walks L), @=both, #=wall, .=void, *=target, +=collected")
	return sb.String()
}

// DescribeCell explains one cell of the board.
func DescribeCell(l *core.Level, s core.State, p core.Pos) (string, error) {
	if !l.InBounds(p) {
		return "", fmt.Errorf("cell %s is out of bounds, the board is %dx%d (x 0-%d, y 0-%d)",
			p, l.Width, l.Height, l.Width-1, l.Height-1)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Cell %s\n", p)
	fmt.Fprintf(&sb, "Base terrain: %s\n", l.At(p))
	fmt.Fprintf(&sb, "Effective terrain: %s\n", core.EffectiveAt(l, &s, p))

	var tokens []string
	for _, c := range []core.Character{core.White, core.Black} {
		if s.Pos(c) == p {
			name := c.String()
			if c == s.Active {
				name += " (active)"
			}
			tokens = append(tokens, name)
		}
	}
	if len(tokens) == 0 {
		tokens = append(tokens, "none")
	}
	fmt.Fprintf(&sb, "Tokens: %s\n", strings.Join(tokens, ", "))

	if i := l.TargetIndex(p); i >= 0 {
		collected := i < len(s.Collected) && s.Collected[i]
		fmt.Fprintf(&sb, "Target #%d: collected=%t\n", i, collected)
	}
	fmt.Fprintf(&sb, "P1 White may enter: %t\n", core.IsWalkable(l, &s, core.White, p))
	fmt.Fprintf(&sb, "P2 Black may enter: %t", core.IsWalkable(l, &s, core.Black, p))
	return sb.String(), nil
}
