// Package domain models delivery routes, weather forecasts, and the
// weather-driven risk classification applied to them.
//
// # Risk Scale
//
// Routes carry a riskLevel and forecast days carry a floodRisk, both on a
// 0–10 integer scale where 10 is the highest risk. The scale is produced by the
// remote route service; the core never rescales it.
//
// # Risk Tiers
//
// [Classify] maps a score to one of three tiers using inclusive lower bounds,
// checked from the top down:
//
//	High:   risk >= 7
//	Medium: 4 <= risk < 7
//	Low:    risk < 4
//
// Scores outside 0–10 follow the same rule (a negative score is Low, 12 is
// High). Each tier has exactly one display color and, for routes, one
// operational recommendation. See [Tier.Color] and [Tier.Recommendation].
//
// # Route Geometry
//
// Route coordinates are an ordered path. The first coordinate is the pickup
// point and the last is the drop-off point; map consumers draw their start and
// end markers from [Route.Endpoints]. Coordinates are passed through unchecked.
//
// # Forecasts
//
// A [Forecast] is chronological: index 0 is the soonest day. Dates are ISO
// calendar dates (yyyy-mm-dd) as sent by the remote service.
package domain
