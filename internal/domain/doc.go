// Package domain models disaster incident records and the rule-based
// scoring applied to them.
//
// # Data Sources
//
// Incident records are either generated synthetically (see [Generator]) or
// arrive from upstream as flat JSON on the Kafka source topic. Two reference
// datasets are cleaned alongside them: the EM-DAT international disaster
// database export and the World Risk Index (WRI) table.
//
// # Risk Score
//
// The incident risk score is a fixed linear combination of impact metrics:
//
//	score = casualties*0.4 + economic_loss_crores*0.4 + (24 - response_time_hours)*0.2
//
// The EM-DAT variant scores deaths, affected, damage and magnitude instead:
//
//	score = total_deaths*0.4 + affected*0.3 + damage*0.2 + magnitude*0.1
//
// Missing inputs are coerced to zero before scoring; the scorer itself has no
// error path.
//
// # Severity Labels
//
// Labels are a monotonic step function of the score:
//
//	score < Medium          → Low
//	Medium <= score < High  → Medium
//	score >= High           → High
//
// Incident data uses 15/35 and EM-DAT data uses 15/40. The incident pair can
// be overridden through configuration; see [Thresholds].
//
// # Seasons
//
// Months map onto the Indian climatological seasons used by the dataset:
//
//	Winter:       Dec, Jan, Feb
//	Summer:       Mar, Apr, May
//	Monsoon:      Jun, Jul, Aug, Sep
//	Post-Monsoon: Oct, Nov
//
// # Forecast
//
// The naive risk forecast counts incidents per (state, month) and takes a
// trailing three-period mean per state with a minimum of one period. See
// [RollingForecast].
//
// # ID Generation
//
// Streamed incidents get deterministic SHA-256 based IDs so that replays
// upsert idempotently downstream. See [generateID].
package domain
