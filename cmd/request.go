package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"raktsetu/app"
	"raktsetu/config"
	"raktsetu/core/lifecycle"
	"raktsetu/core/model"
	"raktsetu/infra/logger"
	"raktsetu/infra/memory"
)

var (
	reqHospitalID string
	reqBloodType  string
	reqUnits      int
	reqUrgency    string
	reqMessage    string
	reqDemo       bool
)

var requestCmd = &cobra.Command{
	Use:   "request",
	Short: "Inject a blood request and run the dispatch pipeline",
	RunE:  submitRequest,
}

func init() {
	requestCmd.Flags().StringVar(&reqHospitalID, "hospital", "", "hospital id")
	requestCmd.Flags().StringVar(&reqBloodType, "blood-type", "O+", "requested blood type")
	requestCmd.Flags().IntVar(&reqUnits, "units", 1, "units needed")
	requestCmd.Flags().StringVar(&reqUrgency, "urgency", "high", "urgency: low, medium, high or critical")
	requestCmd.Flags().StringVar(&reqMessage, "message", "", "optional free-text message")
	requestCmd.Flags().BoolVar(&reqDemo, "demo", false, "seed demo donors and a hospital first")
	rootCmd.AddCommand(requestCmd)
}

func submitRequest(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logg := logger.New("request-command")
	svc, err := app.New(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := svc.Close(); err != nil {
			logg.Errorf("service close: %v", err)
		}
	}()

	bt, err := model.ParseBloodType(reqBloodType)
	if err != nil {
		return err
	}
	urg, err := model.ParseUrgency(reqUrgency)
	if err != nil {
		return err
	}
	if reqDemo {
		if err := seedDemo(svc); err != nil {
			return err
		}
		if reqHospitalID == "" {
			reqHospitalID = "demo-hospital"
		}
	}

	req, res, err := svc.Manager.Create(context.Background(), lifecycle.CreateParams{
		HospitalID:  reqHospitalID,
		BloodType:   bt,
		UnitsNeeded: reqUnits,
		Urgency:     urg,
		Message:     reqMessage,
	})
	if err != nil {
		return fmt.Errorf("dispatch: %w", err)
	}
	logg.Infof("request %s: %d eligible, %d notified, %d skipped, %d failed",
		req.ID, res.Eligible, len(res.Sent), len(res.Skipped), len(res.Errors))
	if stats := res.SelectedStats(); len(res.Selected) > 0 {
		logg.Infof("selected donor distance: mean %.1fkm, p90 %.1fkm", stats.MeanKM, stats.P90KM)
	}
	return nil
}

// seedDemo populates the store with a hospital and a handful of donors so
// the pipeline has something to dispatch against.
func seedDemo(svc *app.Service) error {
	mem, ok := svc.Store.(*memory.Store)
	if !ok {
		return fmt.Errorf("--demo requires the memory store backend")
	}
	mem.AddHospital(model.Hospital{
		ID:       "demo-hospital",
		Name:     "City General",
		Phone:    "+91-80-2345-6789",
		Location: model.Coordinates{Lat: 12.9716, Lon: 77.5946},
	})
	donors := []model.Donor{
		{ID: "d1", Name: "Asha", Phone: "+91-98450-00001", BloodType: model.OPositive, Location: model.Coordinates{Lat: 12.99, Lon: 77.60}, Active: true, Notify: true},
		{ID: "d2", Name: "Ravi", Phone: "+91-98450-00002", BloodType: model.OPositive, Location: model.Coordinates{Lat: 13.05, Lon: 77.62}, Active: true, Notify: true},
		{ID: "d3", Name: "Meena", Phone: "+91-98450-00003", BloodType: model.OPositive, Location: model.Coordinates{Lat: 12.93, Lon: 77.55}, Active: false, Notify: true},
		{ID: "d4", Name: "Kiran", Phone: "+91-98450-00004", BloodType: model.ABNegative, Location: model.Coordinates{Lat: 12.97, Lon: 77.58}, Active: true, Notify: true},
	}
	for _, d := range donors {
		mem.AddDonor(d)
	}
	return nil
}
