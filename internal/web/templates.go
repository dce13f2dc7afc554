package web

import (
    "bytes"
    "html/template"
    "net/http"

    "github.com/google/uuid"
    "github.com/jaminalder/tictactoe-ai/internal/app"
    "github.com/jaminalder/tictactoe-ai/internal/domain"
    "github.com/rs/zerolog/log"
)

type templates struct {
    base  *template.Template
    game  *template.Template
    board *template.Template
    index *template.Template
}

func funcs() template.FuncMap {
    return template.FuncMap{
        "cellSymbol": func(c domain.Cell) string {
            switch c {
            case domain.X:
                return "X"
            case domain.O:
                return "O"
            default:
                return ""
            }
        },
    }
}

func loadTemplates() *templates {
    base := template.Must(template.New("base").Funcs(funcs()).Parse(`<!doctype html><html><head>
<meta charset="utf-8"/>
<script src="https://unpkg.com/htmx.org@1.9.12"></script>
<script src="https://unpkg.com/htmx.org/dist/ext/sse.js"></script>
</head><body>{{template "content" .}}</body></html>`))
    // Define the board template within the same set so game can include it
    template.Must(base.New("board").Funcs(funcs()).Parse(boardTemplate))
    index := template.Must(template.Must(base.Clone()).New("content").Parse(`<h1>TicTacToe AI</h1><form action="/game" method="post"><button>Create</button></form>`))
    game := template.Must(template.Must(base.Clone()).New("content").Parse(`
<div hx-ext="sse" hx-sse="connect:/game/{{.ID}}/events">
  <div id="board" hx-sse="swap:board">{{template "board" .Board}}</div>
</div>`))
    // Standalone board template used for fragment rendering
    board := template.Must(template.New("board_only").Funcs(funcs()).Parse(boardTemplate))
    return &templates{base: base, game: game, board: board, index: index}
}

func renderTemplate(t *template.Template, name string, data any) []byte {
    var buf bytes.Buffer
    var err error
    if name == "" {
        err = t.Execute(&buf, data)
    } else {
        err = t.ExecuteTemplate(&buf, name, data)
    }
    if err != nil {
        log.Error().Err(err).Str("template", t.Name()).Msg("render template")
    }
    return buf.Bytes()
}

// boardView is what the board fragment renders.
type boardView struct {
    ID      string
    Rows    [domain.Size][domain.Size]domain.Cell
    Status  string
    Mode    string
    Level   string
    Engine  string
    Running bool
    Error   string
}

func newBoardView(gs app.GameState, errMsg string) boardView {
    v := boardView{
        ID:      gs.ID,
        Mode:    gs.Game.Mode.String(),
        Level:   gs.Game.Level.String(),
        Engine:  gs.Game.EnginePlayer.String(),
        Running: gs.Game.Running,
        Error:   errMsg,
    }
    for r := 0; r < domain.Size; r++ {
        for c := 0; c < domain.Size; c++ {
            v.Rows[r][c] = gs.Game.Board.Cell(r, c)
        }
    }
    switch outcome := gs.Game.Outcome(); outcome {
    case "":
        v.Status = gs.Game.Turn.String() + " to move"
    case "tie":
        v.Status = "Tie!"
    default:
        v.Status = "Player " + outcome + " wins!"
    }
    return v
}

const boardTemplate = `
<div id="board">
  {{if .Error}}
  <div class="alert">{{.Error}}</div>
  {{end}}
  <div class="status">{{.Status}}</div>
  {{$id := .ID}}
  {{range $r, $row := .Rows}}
  <div class="row">
    {{range $c, $cell := $row}}
      <form hx-post="/game/{{$id}}/play" hx-target="#board" hx-swap="outerHTML" method="post">
        <input type="hidden" name="r" value="{{$r}}">
        <input type="hidden" name="c" value="{{$c}}">
        <button type="submit">{{cellSymbol $cell}}</button>
      </form>
    {{end}}
  </div>
  {{end}}
  <div class="controls">
    <form hx-post="/game/{{$id}}/mode" hx-target="#board" hx-swap="outerHTML" method="post"><button>Mode: {{.Mode}}</button></form>
    <form hx-post="/game/{{$id}}/level" hx-target="#board" hx-swap="outerHTML" method="post">
      <button name="level" value="random">Random</button>
      <button name="level" value="minimax">Minimax</button>
      <span class="level">{{.Level}}</span>
    </form>
    <form hx-post="/game/{{$id}}/engine" hx-target="#board" hx-swap="outerHTML" method="post">
      <button name="player" value="X">Engine plays X</button>
      <button name="player" value="O">Engine plays O</button>
      <span class="engine">{{.Engine}}</span>
    </form>
    <form hx-post="/game/{{$id}}/reset" hx-target="#board" hx-swap="outerHTML" method="post"><button>Reset</button></form>
  </div>
</div>
`

// Helper to set cookie
func ensurePlayerCookie(w http.ResponseWriter, r *http.Request) string {
    if c, err := r.Cookie("player_id"); err == nil && c.Value != "" {
        return c.Value
    }
    // Generate UUIDv4 for player ID
    v := uuid.NewString()
    http.SetCookie(w, &http.Cookie{Name: "player_id", Value: v, Path: "/"})
    return v
}
