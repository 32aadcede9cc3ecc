/*
 * Copyright (c) 2025 Alessandro Faranda Gancio (dba TraceApi)
 *
 * This source code is licensed under the Business Source License 1.1.
 *
 * Change Date: 2027-11-28
 * Change License: AGPL-3.0
 */

package rest

import (
	"github.com/TraceApi/roastery-core/internal/core/ports"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Services is everything the operator API exposes.
type Services struct {
	Origins  ports.OriginService
	Green    ports.GreenCoffeeService
	Roasting ports.RoastingService
	Recipes  ports.RecipeService
	Blending ports.BlendingService
	Sales    ports.SalesService
	Reports  ports.ReportService
}

// RegisterInventoryRoutes mounts every resource handler on r.
func RegisterInventoryRoutes(r chi.Router, svc Services, schemas *Schemas, log *zap.Logger) {
	NewOriginHandler(svc.Origins, schemas, log).RegisterRoutes(r)
	NewGreenBatchHandler(svc.Green, schemas, log).RegisterRoutes(r)
	NewRoastHandler(svc.Roasting, schemas, log).RegisterRoutes(r)
	NewRecipeHandler(svc.Recipes, schemas, log).RegisterRoutes(r)
	NewBlendHandler(svc.Blending, schemas, log).RegisterRoutes(r)
	NewSaleHandler(svc.Sales, schemas, log).RegisterRoutes(r)
	NewReportHandler(svc.Reports, log).RegisterRoutes(r)
}
