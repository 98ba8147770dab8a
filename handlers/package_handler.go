package handlers

import (
	"net/http"

	"github.com/Dosada05/contesthub/dashboard"
	"github.com/Dosada05/contesthub/services"
)

type PackageHandler struct {
	packageService services.PackageService
	dashboards     *dashboard.Router
}

func NewPackageHandler(packageService services.PackageService, dashboards *dashboard.Router) *PackageHandler {
	return &PackageHandler{
		packageService: packageService,
		dashboards:     dashboards,
	}
}

// ListPlans godoc
// @Summary List creator package plans
// @Tags packages
// @Produce json
// @Success 200 {object} map[string]interface{} "Plans"
// @Router /packages [get]
func (h *PackageHandler) ListPlans(w http.ResponseWriter, r *http.Request) {
	plans, err := h.packageService.ListPlans(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"packages": plans}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// Purchase godoc
// @Summary Buy a creator package
// @Tags packages
// @Produce json
// @Param packageID path int true "Plan ID"
// @Success 201 {object} services.PackageSummary
// @Failure 402 {object} map[string]string "Payment declined"
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string "Package still active"
// @Security BearerAuth
// @Router /packages/{packageID}/purchase [post]
func (h *PackageHandler) Purchase(w http.ResponseWriter, r *http.Request) {
	planID, err := getIDFromURL(r, "packageID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	view, ok := creatorView(w, r, h.dashboards)
	if !ok {
		return
	}

	summary, err := view.PurchasePackage(r.Context(), planID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusCreated, summary, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
