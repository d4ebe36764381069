package cmd

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"

	"github.com/backbay/imperium/internal/server"
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Connect to a server, join the lobby, and play interactively",
	RunE:  runPlay,
}

func init() {
	rootCmd.AddCommand(playCmd)
}

// client mirrors the teacher's CLIClient: one websocket connection, a
// reader goroutine printing every inbound Envelope, and a command loop on
// stdin driving JoinRequest/SetReady/StartGame/TurnSubmission frames.
type client struct {
	conn       *websocket.Conn
	done       chan struct{}
	closed     bool
	turnNumber int
	checksum   uint64
}

func runPlay(cmd *cobra.Command, args []string) error {
	name := resolvedName()
	if name == "" {
		return fmt.Errorf("--name is required (or set IMPERIUM_NAME)")
	}

	u := url.URL{Scheme: "ws", Host: resolvedServer(), Path: "/ws"}
	conn, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		return fmt.Errorf("dial %s: %w", u.String(), err)
	}
	defer conn.Close()

	c := &client{conn: conn, done: make(chan struct{})}
	printHeader("connected to %s as %q", u.String(), name)

	c.sendAuthenticate(resolvedGameCode())
	c.sendJoinRequest(name, observer)

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-interrupt
		c.shutdown()
	}()

	go c.readLoop()
	c.commandLoop()
	return nil
}

func (c *client) shutdown() {
	if c.closed {
		return
	}
	c.closed = true
	close(c.done)
	c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	time.Sleep(100 * time.Millisecond)
	os.Exit(0)
}

func (c *client) readLoop() {
	for {
		select {
		case <-c.done:
			return
		default:
		}
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				printError("websocket error: %v", err)
			}
			if !c.closed {
				c.closed = true
				close(c.done)
			}
			return
		}
		env, err := server.DecodeEnvelope(raw)
		if err != nil {
			printError("malformed frame: %v", err)
			continue
		}
		c.handleEnvelope(env)
	}
}

func (c *client) handleEnvelope(env server.Envelope) {
	switch env.Type {
	case server.TypeTurnStarted:
		var p server.TurnStartedPayload
		json.Unmarshal(env.Payload, &p)
		printTurn("[turn %d] player %d to move, %s remaining", p.Turn, p.Player,
			humanize.RelTime(time.Now(), time.Now().Add(time.Duration(p.TimeRemaining)*time.Millisecond), "", ""))
	case server.TypeStateDelta:
		var p server.StateDeltaPayload
		json.Unmarshal(env.Payload, &p)
		c.checksum = p.Checksum
		c.turnNumber = p.TurnNumber
		printDelta("[delta turn %d] %d event(s), checksum=%d", p.TurnNumber, len(p.Deltas), p.Checksum)
		for _, d := range p.Deltas {
			printDelta("  - %v", d["type"])
		}
	case server.TypeTurnAccepted:
		var p server.TurnAcceptedPayload
		json.Unmarshal(env.Payload, &p)
		printAccepted("turn %d accepted", p.TurnNumber)
	case server.TypeTurnRejected:
		var p server.TurnRejectedPayload
		json.Unmarshal(env.Payload, &p)
		if p.InvalidCommand != nil {
			printRejected("turn rejected: command %d: %s", p.InvalidCommand.Index, p.InvalidCommand.Reason)
		} else {
			printRejected("turn rejected")
		}
	case server.TypeDesyncDetected:
		var p server.DesyncDetectedPayload
		json.Unmarshal(env.Payload, &p)
		printDesync("desync on turn %d: expected %d, sent %d; requesting full resync", p.Turn, p.Expected, p.Received)
	case server.TypeLobbyState:
		var p server.LobbyStatePayload
		json.Unmarshal(env.Payload, &p)
		names := make([]string, len(p.Players))
		for i, pl := range p.Players {
			tag := ""
			if pl.Host {
				tag = hostTagStyle.Render("*")
			}
			names[i] = fmt.Sprintf("%s%s", pl.Name, tag)
		}
		printLobby("lobby (%d/%d): %s", len(p.Players), p.Max, strings.Join(names, ", "))
	case server.TypeGameStarting:
		printHeader("game starting")
	case server.TypeGameEnded:
		var p server.GameEndedPayload
		json.Unmarshal(env.Payload, &p)
		fmt.Println(separator())
		printGameEnded("game ended: %s", p.Reason)
	case server.TypeNotification:
		var p server.NotificationPayload
		json.Unmarshal(env.Payload, &p)
		printNotification("* %s", p.Message)
	case server.TypeJoinRejected:
		var p server.JoinRejectedPayload
		json.Unmarshal(env.Payload, &p)
		printRejected("join rejected: %s", p.Reason)
	default:
		printDelta("[%s] %s", env.Type, string(env.Payload))
	}
}

func (c *client) commandLoop() {
	reader := bufio.NewReader(os.Stdin)
	printNotification("type 'help' for commands, 'quit' to exit")
	for {
		select {
		case <-c.done:
			return
		default:
		}
		printPrompt("> ")
		line, err := reader.ReadString('\n')
		if err != nil {
			return
		}
		if c.processLine(strings.TrimSpace(line)) {
			return
		}
	}
}

func (c *client) processLine(line string) (quit bool) {
	if line == "" {
		return false
	}
	parts := strings.Fields(line)
	switch strings.ToLower(parts[0]) {
	case "quit", "exit", "q":
		c.shutdown()
		return true
	case "help", "h":
		printNotification(`commands:
  ready            mark yourself ready in the lobby
  start [size]     start the game (host only), optional map size
  end               end your turn with no other commands
  move <unit> <q,r>...  move a unit along a path of hexes
  attack <unit> <target>  attack with a unit
  chat <message>    send a chat message
  quit              disconnect`)
	case "ready":
		c.sendSetReady(true)
	case "start":
		size := 24
		if len(parts) > 1 {
			if n, err := strconv.Atoi(parts[1]); err == nil {
				size = n
			}
		}
		c.sendStartGame(size)
	case "end":
		c.sendTurn(nil, true)
	case "move":
		if len(parts) < 3 {
			printError("usage: move <unit> <q,r> [q,r...]")
			break
		}
		unit, err := strconv.ParseUint(parts[1], 10, 64)
		if err != nil {
			printError("invalid unit id: %v", err)
			break
		}
		path, err := parseHexPath(parts[2:])
		if err != nil {
			printError("invalid path: %v", err)
			break
		}
		cmd, _ := json.Marshal(map[string]interface{}{"type": "MoveUnit", "unit": unit, "path": path})
		c.sendTurn([]json.RawMessage{cmd}, false)
	case "attack":
		if len(parts) != 3 {
			printError("usage: attack <unit> <target>")
			break
		}
		unit, err1 := strconv.ParseUint(parts[1], 10, 64)
		target, err2 := strconv.ParseUint(parts[2], 10, 64)
		if err1 != nil || err2 != nil {
			printError("unit and target must be numeric ids")
			break
		}
		cmd, _ := json.Marshal(map[string]interface{}{"type": "AttackUnit", "unit": unit, "target_unit": target})
		c.sendTurn([]json.RawMessage{cmd}, false)
	case "chat":
		c.sendChat(strings.Join(parts[1:], " "))
	default:
		printError("unknown command: %s", parts[0])
	}
	return false
}

// parseHexPath parses "q,r" tokens into the wire hex shape MoveUnit expects.
func parseHexPath(tokens []string) ([]map[string]int32, error) {
	path := make([]map[string]int32, 0, len(tokens))
	for _, t := range tokens {
		qr := strings.SplitN(t, ",", 2)
		if len(qr) != 2 {
			return nil, fmt.Errorf("expected q,r got %q", t)
		}
		q, err := strconv.ParseInt(qr[0], 10, 32)
		if err != nil {
			return nil, err
		}
		r, err := strconv.ParseInt(qr[1], 10, 32)
		if err != nil {
			return nil, err
		}
		path = append(path, map[string]int32{"q": int32(q), "r": int32(r)})
	}
	return path, nil
}

func (c *client) send(msgType string, payload interface{}) {
	raw, err := json.Marshal(payload)
	if err != nil {
		raw = []byte("null")
	}
	env := server.Envelope{Type: msgType, Payload: raw}
	if err := c.conn.WriteJSON(env); err != nil {
		printError("send failed: %v", err)
	}
}

func (c *client) sendAuthenticate(code string) {
	if code == "" {
		return
	}
	c.send("Authenticate", server.AuthenticatePayload{GameCode: code})
}

func (c *client) sendJoinRequest(name string, observer bool) {
	c.send("JoinRequest", server.JoinRequestPayload{Name: name, Observer: observer})
}

func (c *client) sendSetReady(ready bool) {
	c.send("SetReady", server.SetReadyPayload{Ready: ready})
}

func (c *client) sendStartGame(mapSize int) {
	c.send("StartGame", server.StartGamePayload{MapSize: mapSize})
}

func (c *client) sendChat(message string) {
	c.send("Chat", server.ChatPayload{Message: message})
}

func (c *client) sendTurn(commands []json.RawMessage, endTurn bool) {
	c.send("TurnSubmission", server.TurnSubmissionPayload{
		TurnNumber: c.turnNumber, Commands: commands, EndTurn: endTurn, StateChecksum: c.checksum,
	})
}
