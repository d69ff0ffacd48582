package main

import (
	"context"
	"log"
	"net/http"
	"os"

	"payflow/account"
	"payflow/attachment"
	"payflow/bizerror"
	"payflow/client/es"
	"payflow/client/s3"
	"payflow/domain"
	"payflow/domain/approval"
	"payflow/domain/budget"
	"payflow/domain/costcenter"
	"payflow/domain/flow"
	"payflow/domain/request"
	"payflow/domain/settings"
	"payflow/domain/supplier"
	"payflow/event"
	"payflow/indices"
	"payflow/infra/tracing"
	"payflow/misc"
	"payflow/persistence"
	"payflow/servehttp"
	"payflow/session"
	"payflow/sessions"

	"github.com/gin-gonic/gin"
)

func main() {
	log.Println("service start")

	tracingCloser := tracing.StartTracing(misc.GetServiceName())
	if tracingCloser != nil {
		defer tracingCloser.Close()
	}

	dbConfig, err := persistence.ParseDatabaseConfigFromEnv()
	if err != nil {
		log.Fatalf("parse database config failed %v\n", err)
	}

	// create database (no conflict)
	if dbConfig.DriverType == "mysql" {
		if err := persistence.PrepareMysqlDatabase(dbConfig.DriverArgs); err != nil {
			log.Fatalf("failed to prepare database %v\n", err)
		}
	}

	// connect database
	ds := &persistence.DataSourceManager{DatabaseConfig: dbConfig}
	if err := ds.Start(); err != nil {
		log.Fatalf("database connection failed %v\n", err)
	}
	defer ds.Stop()
	persistence.ActiveDataSourceManager = ds

	// database migration (race condition)
	err = ds.GormDB(context.Background()).AutoMigrate(
		&account.User{}, &account.UserRole{},
		&domain.PaymentRequest{}, &domain.RequestSequence{},
		&domain.WorkflowStep{}, &domain.StepApprover{},
		&domain.ApprovalHistoryEntry{},
		&domain.CostCenter{}, &domain.Company{}, &domain.Supplier{},
		&domain.Budget{}, &domain.WorkflowConfig{},
		&domain.Attachment{}, &event.EventRecord{},
	).Error
	if err != nil {
		log.Fatalf("database migration failed %v\n", err)
	}

	adminSecret := os.Getenv("ADMIN_SECRET")
	if adminSecret == "" {
		adminSecret = "admin123"
	}
	if err := account.EnsureAdminUser("admin", adminSecret); err != nil {
		log.Fatalf("failed to ensure admin user %v\n", err)
	}

	es.CreateClientFromEnv()
	s3.Bootstrap()

	event.EventHandlers = append(event.EventHandlers, indices.IndexRequestEventHandle)

	engine := gin.Default()
	engine.Use(bizerror.ErrorHandling(), tracing.TracingIngress())
	engine.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, misc.GetServiceName())
	})

	sessions.RegisterSessionsRestAPI(engine)
	account.RegisterUsersRestAPI(engine, session.SimpleAuthFilter())
	costcenter.RegisterCostCentersRestAPI(engine, session.SimpleAuthFilter())
	supplier.RegisterSuppliersRestAPI(engine, session.SimpleAuthFilter())
	budget.RegisterBudgetsRestAPI(engine, session.SimpleAuthFilter())
	settings.RegisterWorkflowConfigRestAPI(engine, session.SimpleAuthFilter())
	flow.RegisterWorkflowStepsRestAPI(engine, session.SimpleAuthFilter())
	request.RegisterPaymentRequestsRestAPI(engine, session.SimpleAuthFilter())
	approval.RegisterApprovalsRestAPI(engine, session.SimpleAuthFilter())
	attachment.RegisterAttachmentsRestAPI(engine, session.SimpleAuthFilter())
	indices.RegisterIndicesRestAPI(engine, session.SimpleAuthFilter())

	servehttp.StartHTTPServer(engine)
}
