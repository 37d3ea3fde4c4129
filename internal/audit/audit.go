// Package audit runs the deterministic safety checks displayed alongside a
// prediction. The checks never block a run; they only feed the report score.
package audit

import (
	"fmt"

	"github.com/islatechai-lang/cryptoomind/models"
)

// Check names, in report order.
const (
	CheckTrend   = "trend"
	CheckVolume  = "volume"
	CheckADX     = "adx"
	CheckAligned = "aligned"
)

// adxFloor is the minimum ADX a check passes at. Strictly above, equality
// warns.
const adxFloor = 15.0

// Run evaluates the four fixed checks against one indicator snapshot. All
// boundaries are strict comparisons: an exactly-equal reading never passes.
func Run(ind *models.TechnicalIndicators) *models.AuditReport {
	checks := []models.AuditCheck{
		trendCheck(ind),
		volumeCheck(ind),
		adxCheck(ind),
		alignedCheck(),
	}

	return &models.AuditReport{
		Checks: checks,
		Score:  Score(checks),
	}
}

func trendCheck(ind *models.TechnicalIndicators) models.AuditCheck {
	status := models.AuditFail
	if ind.EMA12 > ind.EMA26 {
		status = models.AuditPass
	}
	return models.AuditCheck{
		Name:   CheckTrend,
		Status: status,
		Detail: fmt.Sprintf("EMA12 %.5f vs EMA26 %.5f", ind.EMA12, ind.EMA26),
	}
}

func volumeCheck(ind *models.TechnicalIndicators) models.AuditCheck {
	status := models.AuditWarn
	if ind.VolumeRatio > 1 {
		status = models.AuditPass
	}
	return models.AuditCheck{
		Name:   CheckVolume,
		Status: status,
		Detail: fmt.Sprintf("volume at %.0f%% of 20-period average", ind.VolumeRatio*100),
	}
}

func adxCheck(ind *models.TechnicalIndicators) models.AuditCheck {
	status := models.AuditWarn
	if ind.ADX > adxFloor {
		status = models.AuditPass
	}
	return models.AuditCheck{
		Name:   CheckADX,
		Status: status,
		Detail: fmt.Sprintf("ADX %.1f against floor %.0f", ind.ADX, adxFloor),
	}
}

// alignedCheck is a constant placeholder kept for report compatibility.
func alignedCheck() models.AuditCheck {
	return models.AuditCheck{
		Name:   CheckAligned,
		Status: models.AuditPass,
		Detail: "exposure aligned with mandate",
	}
}

// Score maps check outcomes onto the displayed 0-100 scale: pass counts
// full, warn counts half, fail counts nothing.
func Score(checks []models.AuditCheck) float64 {
	if len(checks) == 0 {
		return 0
	}

	total := 0.0
	for _, c := range checks {
		switch c.Status {
		case models.AuditPass:
			total++
		case models.AuditWarn:
			total += 0.5
		}
	}
	return total / float64(len(checks)) * 100
}
