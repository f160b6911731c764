// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package feedback_api is a local-development implementation of the
// feedback service HTTP API, backed by process memory.
package feedback_api

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

// ServiceName is the otel service and span name prefix.
const ServiceName = "feedback-api"

// RegisterRoutes registers the feedback endpoints with the router.
//
// Endpoints:
//
//	GET  /health
//	GET  /metrics
//	GET  /api/feedback?limit=N
//	POST /api/feedback
//	GET  /api/analytics/summary?scope=week|all
//	POST /api/analytics/insights
func RegisterRoutes(router *gin.Engine, handlers *Handlers) {
	router.GET("/health", handlers.HandleHealth)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api")
	{
		api.GET("/feedback", handlers.HandleList)
		api.POST("/feedback", handlers.HandleCreate)

		analytics := api.Group("/analytics")
		{
			analytics.GET("/summary", handlers.HandleSummary)
			analytics.POST("/insights", handlers.HandleInsights)
		}
	}
}

// NewRouter builds a router with recovery, request ids and tracing.
func NewRouter(handlers *Handlers) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(RequestID())
	router.Use(otelgin.Middleware(ServiceName))
	RegisterRoutes(router, handlers)
	return router
}
