package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/conorlee8/Eppy-Events-sub001/cluster"
	"github.com/conorlee8/Eppy-Events-sub001/config"
	"github.com/conorlee8/Eppy-Events-sub001/events"
	"github.com/conorlee8/Eppy-Events-sub001/geo"
	"github.com/conorlee8/Eppy-Events-sub001/particles"
	"github.com/conorlee8/Eppy-Events-sub001/region"
	"github.com/conorlee8/Eppy-Events-sub001/session"
	"github.com/conorlee8/Eppy-Events-sub001/viewport"
)

type mapServer struct {
	cfg       config.Config
	regions   *region.Index
	sessions  *session.Manager
	defaultID string
}

func newMapServer(cfg config.Config) *mapServer {
	if err := os.MkdirAll(cfg.SnapshotDir, 0755); err != nil {
		log.Printf("Failed to create snapshot directory: %v", err)
	}

	regions := region.DefaultIndex()
	s := &mapServer{
		cfg:      cfg,
		regions:  regions,
		sessions: session.NewManager(cfg.MaxSessions),
	}

	sess := s.newSession(events.GenerateTestEvents(2000, s.eventBounds()))
	s.sessions.Add(sess)
	s.defaultID = sess.ID
	log.Printf("Started default session %s with 2000 events", sess.ID)

	return s
}

// eventBounds is the geographic box the generator fills: the union of the
// region bounds plus a pad so some events land outside every neighborhood.
func (s *mapServer) eventBounds() geo.Bounds {
	regions := s.regions.Regions()
	b := regions[0].Bounds
	for _, r := range regions[1:] {
		if r.Bounds.North > b.North {
			b.North = r.Bounds.North
		}
		if r.Bounds.South < b.South {
			b.South = r.Bounds.South
		}
		if r.Bounds.East > b.East {
			b.East = r.Bounds.East
		}
		if r.Bounds.West < b.West {
			b.West = r.Bounds.West
		}
	}
	const pad = 0.01
	b.North += pad
	b.South -= pad
	b.East += pad
	b.West -= pad
	return b
}

func (s *mapServer) newSession(evts []events.Event) *session.Session {
	return session.New(session.Config{
		Regions: s.regions,
		Events:  evts,
		ClusterOpts: cluster.Options{
			PopularityMaxZoom: s.cfg.Cluster.PopularityMaxZoom,
			IndividualMinZoom: s.cfg.Cluster.IndividualMinZoom,
			BaseRadiusPx:      s.cfg.Cluster.BaseRadiusPx,
		},
		AnimOpts: particles.Options{
			TotalDuration: s.cfg.Animation.TotalDuration,
			MinPerSprite:  s.cfg.Animation.MinPerSprite,
			MaxPerSprite:  s.cfg.Animation.MaxPerSprite,
		},
		View: viewport.Viewport{
			Width:  s.cfg.Viewport.Width,
			Height: s.cfg.Viewport.Height,
			Center: geo.Point{Lat: s.cfg.Viewport.CenterLat, Lng: s.cfg.Viewport.CenterLng},
			Zoom:   s.cfg.Viewport.Zoom,
		},
	})
}

// sessionFor resolves the session a request addresses, defaulting to the
// boot session.
func (s *mapServer) sessionFor(c *gin.Context) (*session.Session, bool) {
	id := c.Query("session")
	if id == "" {
		id = s.defaultID
	}
	sess, err := s.sessions.Get(id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return nil, false
	}
	return sess, true
}

// requestClusters computes clusters for a request's zoom (falling back to
// the session camera) and optional bounds filter.
func (s *mapServer) requestClusters(c *gin.Context, sess *session.Session) ([]cluster.DisplayCluster, error) {
	zoom := sess.View().Zoom
	if zq := c.Query("zoom"); zq != "" {
		z, err := strconv.ParseFloat(zq, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid zoom parameter")
		}
		zoom = z
	}

	clusters := sess.ClustersAt(zoom)

	if c.Query("north") == "" {
		return clusters, nil
	}
	bounds, err := parseBounds(c)
	if err != nil {
		return nil, err
	}
	filtered := clusters[:0]
	for _, cl := range clusters {
		if bounds.Contains(cl.Centroid) {
			filtered = append(filtered, cl)
		}
	}
	return filtered, nil
}

func parseBounds(c *gin.Context) (geo.Bounds, error) {
	var b geo.Bounds
	for _, q := range []struct {
		name string
		dst  *float64
	}{
		{"north", &b.North},
		{"south", &b.South},
		{"east", &b.East},
		{"west", &b.West},
	} {
		v, err := strconv.ParseFloat(c.Query(q.name), 64)
		if err != nil {
			return b, fmt.Errorf("invalid %s parameter", q.name)
		}
		*q.dst = v
	}
	return b, nil
}

// toGeoJSON converts clusters to a GeoJSON FeatureCollection for the map
// renderer.
func toGeoJSON(clusters []cluster.DisplayCluster) gin.H {
	features := make([]gin.H, len(clusters))
	for i, cl := range clusters {
		properties := gin.H{
			"id":          cl.ID,
			"tier":        cl.Tier,
			"cluster":     cl.Count() > 1,
			"event_count": cl.Count(),
			"popularity":  cl.Popularity,
		}
		if cl.RegionID != "" {
			properties["region_id"] = cl.RegionID
			properties["region_name"] = cl.RegionName
		}
		if cl.Count() == 1 {
			properties["event_id"] = cl.Members[0].ID
			properties["category"] = cl.Members[0].Category.String()
		}

		features[i] = gin.H{
			"type": "Feature",
			"geometry": gin.H{
				"type":        "Point",
				"coordinates": []float64{cl.Centroid.Lng, cl.Centroid.Lat},
			},
			"properties": properties,
		}
	}

	return gin.H{
		"type":     "FeatureCollection",
		"features": features,
	}
}

func (s *mapServer) routes(r *gin.Engine) {
	r.GET("/api/clusters", func(c *gin.Context) {
		sess, ok := s.sessionFor(c)
		if !ok {
			return
		}
		clusters, err := s.requestClusters(c, sess)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, toGeoJSON(clusters))
	})

	r.GET("/api/clusters/summary", func(c *gin.Context) {
		sess, ok := s.sessionFor(c)
		if !ok {
			return
		}
		clusters, err := s.requestClusters(c, sess)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, cluster.Summarize(clusters))
	})

	r.GET("/api/regions", func(c *gin.Context) {
		regions := s.regions.Regions()
		out := make([]gin.H, len(regions))
		for i, rg := range regions {
			out[i] = gin.H{
				"id":       rg.ID,
				"name":     rg.Name,
				"centroid": gin.H{"lat": rg.Centroid.Lat, "lng": rg.Centroid.Lng},
				"bounds": gin.H{
					"north": rg.Bounds.North, "south": rg.Bounds.South,
					"east": rg.Bounds.East, "west": rg.Bounds.West,
				},
			}
		}
		c.JSON(http.StatusOK, out)
	})

	// Opening blocks until the camera transition settles (the client posts
	// /api/viewport/settled when its map animation ends), so the open
	// commits at the right moment instead of on the click.
	r.POST("/api/regions/:id/open", func(c *gin.Context) {
		sess, ok := s.sessionFor(c)
		if !ok {
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
		defer cancel()

		if err := sess.ClickRegion(ctx, c.Param("id")); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"opened": sess.Opened()})
	})

	r.POST("/api/regions/reset", func(c *gin.Context) {
		sess, ok := s.sessionFor(c)
		if !ok {
			return
		}
		sess.ResetOpened()
		c.JSON(http.StatusOK, gin.H{"opened": sess.Opened()})
	})

	r.POST("/api/viewport", func(c *gin.Context) {
		sess, ok := s.sessionFor(c)
		if !ok {
			return
		}
		var req struct {
			Width     float64 `json:"width"`
			Height    float64 `json:"height"`
			CenterLat float64 `json:"centerLat"`
			CenterLng float64 `json:"centerLng"`
			Zoom      float64 `json:"zoom"`
		}
		if err := c.BindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid viewport"})
			return
		}
		sess.SetView(viewport.Viewport{
			Width:  req.Width,
			Height: req.Height,
			Center: geo.Point{Lat: req.CenterLat, Lng: req.CenterLng},
			Zoom:   req.Zoom,
		})
		c.JSON(http.StatusOK, gin.H{"opened": sess.Opened()})
	})

	r.POST("/api/viewport/settled", func(c *gin.Context) {
		sess, ok := s.sessionFor(c)
		if !ok {
			return
		}
		sess.Settler().Settle()
		c.Status(http.StatusNoContent)
	})

	r.POST("/api/sessions", func(c *gin.Context) {
		def, err := s.sessions.Get(s.defaultID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		sess := s.newSession(def.Events())
		s.sessions.Add(sess)
		c.JSON(http.StatusOK, gin.H{"session": sess.ID})
	})

	r.GET("/api/snapshots", func(c *gin.Context) {
		infos, err := events.ListSnapshots(s.cfg.SnapshotDir)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, infos)
	})

	r.POST("/api/snapshots", func(c *gin.Context) {
		sess, ok := s.sessionFor(c)
		if !ok {
			return
		}
		var req struct {
			NumEvents int `json:"numEvents"`
		}
		if err := c.BindJSON(&req); err != nil || req.NumEvents <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
			return
		}

		evts := events.GenerateTestEvents(req.NumEvents, s.eventBounds())
		path := events.SnapshotFilename(s.cfg.SnapshotDir, len(evts))
		if err := events.SaveSnapshot(path, evts); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		sess.SetEvents(evts)
		log.Printf("Generated %d events and saved snapshot %s", len(evts), path)
		c.JSON(http.StatusOK, gin.H{"numEvents": len(evts), "path": path})
	})

	r.POST("/api/snapshots/load/:id", func(c *gin.Context) {
		sess, ok := s.sessionFor(c)
		if !ok {
			return
		}
		info, err := events.FindSnapshot(s.cfg.SnapshotDir, c.Param("id"))
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		evts, err := events.LoadSnapshot(info.Path)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		sess.SetEvents(evts)
		c.JSON(http.StatusOK, gin.H{"snapshot": info, "numEvents": len(evts)})
	})

	r.GET("/ws/particles", s.particleStream)
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

func main() {
	if err := godotenv.Load(); err == nil {
		log.Println("Loaded configuration from .env")
	}
	cfg := config.Load()

	server := newMapServer(cfg)

	r := gin.Default()
	r.Use(corsMiddleware())
	server.routes(r)

	httpServer := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: r,
	}

	go func() {
		log.Printf("Starting server on %s...", cfg.ListenAddr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		log.Printf("Forced shutdown: %v", err)
	}
	log.Println("Server stopped")
}
