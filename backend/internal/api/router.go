package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"socialgraph/backend/internal/constants"
	"socialgraph/backend/internal/graph"
	"socialgraph/backend/internal/graphexport"
	"socialgraph/backend/pkg/logger"
)

// Exporter mirrors the graph to an external store
type Exporter interface {
	Export(ctx context.Context) (*graphexport.Summary, error)
}

// Server holds the REST handlers
type Server struct {
	repo         *graph.Repository
	graphql      gin.HandlerFunc
	exporter     Exporter
	maxBodyBytes int64
	logger       *zap.Logger
}

// Option configures a Server
type Option func(*Server)

// WithGraphQL mounts h at the GraphQL path
func WithGraphQL(h gin.HandlerFunc) Option {
	return func(s *Server) { s.graphql = h }
}

// WithExporter enables POST /admin/export
func WithExporter(e Exporter) Option {
	return func(s *Server) { s.exporter = e }
}

// WithMaxBodyBytes caps REST request bodies
func WithMaxBodyBytes(n int64) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxBodyBytes = n
		}
	}
}

// NewServer creates the REST layer over repo
func NewServer(repo *graph.Repository, opts ...Option) *Server {
	s := &Server{
		repo:         repo,
		maxBodyBytes: constants.DefaultMaxBodyBytes,
		logger:       logger.Get(),
	}
	for _, opt := range opts {
		opt(s)
	}
	useJSONFieldNames()
	return s
}

// Router builds the gin engine with middleware and every route
func (s *Server) Router() *gin.Engine {
	router := gin.New()
	router.Use(ginLogger(s.logger))
	router.Use(gin.Recovery())
	router.Use(cors())
	router.Use(limitBody(s.maxBodyBytes))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	s.Register(router)

	if s.graphql != nil {
		router.POST(constants.GraphQLPath, s.graphql)
	}
	if s.exporter != nil {
		router.POST("/admin/export", s.export)
	}
	return router
}

// Register mounts the entity routes on r
func (s *Server) Register(r gin.IRouter) {
	users := r.Group("/users")
	{
		users.GET("", s.listUsers)
		users.GET("/:id", s.getUser)
		users.POST("", s.createUser)
		users.PATCH("/:id", s.changeUser)
		users.DELETE("/:id", s.deleteUser)
		users.POST("/:id/subscribeTo", s.subscribeTo)
		users.POST("/:id/unsubscribeFrom", s.unsubscribeFrom)
	}

	profiles := r.Group("/profiles")
	{
		profiles.GET("", s.listProfiles)
		profiles.GET("/:id", s.getProfile)
		profiles.POST("", s.createProfile)
		profiles.PATCH("/:id", s.changeProfile)
		profiles.DELETE("/:id", s.deleteProfile)
	}

	posts := r.Group("/posts")
	{
		posts.GET("", s.listPosts)
		posts.GET("/:id", s.getPost)
		posts.POST("", s.createPost)
		posts.PATCH("/:id", s.changePost)
		posts.DELETE("/:id", s.deletePost)
	}

	memberTypes := r.Group("/member-types")
	{
		memberTypes.GET("", s.listMemberTypes)
		memberTypes.GET("/:id", s.getMemberType)
		memberTypes.PATCH("/:id", s.changeMemberType)
	}
}

func (s *Server) export(c *gin.Context) {
	summary, err := s.exporter.Export(c.Request.Context())
	if err != nil {
		s.respondError(c, "export", err)
		return
	}
	c.JSON(http.StatusOK, summary)
}
