package handlers

import (
	"claim_flow_app_go/config"
	"claim_flow_app_go/db"
	"claim_flow_app_go/services"
)

var (
	roleService         *services.RoleService
	smsService          *services.SMSService
	notificationService *services.NotificationService
	appConfig           *config.Config
	pdfRenderer         *services.PDFRenderer
)

// InitServices wires the long-lived services used by the handlers
func InitServices(cfg *config.Config, roles *services.RoleService, sms *services.SMSService) {
	appConfig = cfg
	roleService = roles
	smsService = sms
	notificationService = services.NewNotificationService(db.DB, cfg, sms)
	pdfRenderer = services.NewPDFRenderer(cfg.ChromePath, 2)
}
