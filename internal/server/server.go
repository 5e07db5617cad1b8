package server

import (
	"labelmart/internal/handler"
	"labelmart/internal/middleware"
	"labelmart/internal/service"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
)

type Server struct {
	echo              *echo.Echo
	settlementHandler *handler.SettlementHandler
	adminHandler      *handler.AdminHandler
	jwtSecret         string
	adminToken        string
}

func NewServer(
	settlementService service.SettlementService,
	adminHandler *handler.AdminHandler,
	jwtSecret, adminToken string,
) *Server {
	e := echo.New()

	e.Use(echomw.Logger())
	e.Use(echomw.Recover())
	e.Use(echomw.CORS())

	s := &Server{
		echo:              e,
		settlementHandler: handler.NewSettlementHandler(settlementService),
		adminHandler:      adminHandler,
		jwtSecret:         jwtSecret,
		adminToken:        adminToken,
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	api := s.echo.Group("/api")

	api.GET("/health", func(c echo.Context) error {
		return c.JSON(200, map[string]string{"status": "ok"})
	})

	// Webhooks authenticate by signature, not session.
	api.POST("/webhook/commerce", s.settlementHandler.CommerceWebhook)

	authed := api.Group("", middleware.Auth(s.jwtSecret))
	authed.GET("/balance", s.settlementHandler.GetBalance)
	authed.POST("/orders/pay-with-credits", s.settlementHandler.PayWithCredits)
	authed.POST("/orders/create-charge", s.settlementHandler.CreateCharge)
	authed.POST("/topup/create-charge", s.settlementHandler.TopUpCreateCharge)

	admin := api.Group("/admin", middleware.AdminAuth(s.adminToken))
	admin.GET("/orders", s.adminHandler.ListOrders)
	admin.GET("/orders/:id", s.adminHandler.GetOrder)
	admin.DELETE("/orders/:id", s.adminHandler.DeleteOrder)
	admin.GET("/ledger/:principal/entries", s.adminHandler.ListLedgerEntries)
	admin.GET("/webhook-events", s.adminHandler.ListWebhookEvents)
}

func (s *Server) Start(address string) error {
	return s.echo.Start(address)
}

func (s *Server) Shutdown() error {
	return s.echo.Close()
}
