package main

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/conorlee8/Eppy-Events-sub001/particles"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

type transitionRequest struct {
	Sources []particles.Position `json:"sources"`
	Targets []particles.Position `json:"targets"`
}

type particleFrame struct {
	Type      string          `json:"type"`
	ElapsedMs float64         `json:"elapsedMs"`
	Done      bool            `json:"done"`
	Particles []frameParticle `json:"particles"`
}

type frameParticle struct {
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Opacity float64 `json:"opacity"`
	Phase   string  `json:"phase"`
}

// particleStream runs one explode-and-morph animation over a websocket.
// The client sends a single start message with source and target screen
// positions, then receives frames until the morph completes or it hangs up.
func (s *mapServer) particleStream(c *gin.Context) {
	sess, ok := s.sessionFor(c)
	if !ok {
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("Websocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(30 * time.Second))
	var req transitionRequest
	if err := conn.ReadJSON(&req); err != nil {
		log.Printf("Websocket start message error: %v", err)
		return
	}

	handle := sess.StartTransition(req.Sources, req.Targets)

	// Reader goroutine only signals; the handle is ticked and cancelled
	// from this goroutine alone.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		conn.SetReadDeadline(time.Time{})
		for {
			if _, _, err := conn.NextReader(); err != nil {
				return
			}
		}
	}()

	interval := s.cfg.Animation.FrameInterval
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	start := time.Now()

	for !handle.Done() {
		select {
		case <-closed:
			handle.Cancel()
			return
		case <-ticker.C:
		}

		elapsed := float64(time.Since(start).Milliseconds())
		frame := buildFrame(elapsed, handle.Tick(elapsed), handle.Done())

		conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
		if err := conn.WriteJSON(frame); err != nil {
			if !handle.Done() {
				handle.Cancel()
			}
			return
		}
	}

	conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "complete"))
}

func buildFrame(elapsed float64, snapshot []particles.Particle, done bool) particleFrame {
	frame := particleFrame{
		Type:      "frame",
		ElapsedMs: elapsed,
		Done:      done,
		Particles: make([]frameParticle, len(snapshot)),
	}
	for i, p := range snapshot {
		frame.Particles[i] = frameParticle{
			X:       p.Pos.X,
			Y:       p.Pos.Y,
			Opacity: p.Opacity,
			Phase:   p.Phase.String(),
		}
	}
	return frame
}
