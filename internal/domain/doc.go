// Package domain models NASA FIRMS active-fire hotspot detections and the
// validation pipeline that turns them into corroborated fire polygons.
//
// # Data Source
//
// Detections originate from the FIRMS (Fire Information for Resource
// Management System) area API, available at
// https://firms.modaps.eosdis.nasa.gov/api/area/. Each request returns CSV
// rows for one satellite product over a bounding box and a day window. The
// products of interest are the near-real-time VIIRS variants
// (VIIRS_SNPP_NRT, VIIRS_NOAA20_NRT, VIIRS_NOAA21_NRT).
//
// # FIRMS CSV Conventions
//
// Confidence is categorical:
//
//	"l" low, "n" nominal, "h" high.
//	Only high-confidence detections count toward cross-product corroboration.
//
// Acquisition time:
//
//	acq_date is a UTC date ("2026-08-29"); acq_time is HHMM in 24-hour
//	notation with leading zeros frequently dropped ("932" means 09:32 UTC).
//	Values shorter than four digits are zero-left-padded before parsing.
//	See [ParseAcquiredAt].
//
// Bounding box:
//
//	"world" or "minLon,minLat,maxLon,maxLat" in WGS-84 degrees, the exact
//	string the FIRMS area API accepts. See [ParseBoundingBox].
//
// # Validation Pipeline
//
// Raw detections pass through four stages, each a pure function in this
// package:
//
//  1. [FilterRecent] keeps, per product batch, only detections within a
//     lookback window of the batch's most recent observation.
//  2. [ClusterDetections] groups the unioned point set with DBSCAN over raw
//     (longitude, latitude) degrees. Note that Euclidean distance on
//     unprojected degrees is only meaningful at the default eps of ~0.01°;
//     longitude degrees compress toward the poles, so clusters at high
//     latitudes are tighter east-west than the eps suggests. This matches
//     the upstream model and is intentionally left uncorrected.
//  3. [FilterCorroborated] drops clusters that are too small or that lack
//     high-confidence detections from enough distinct products.
//  4. [SynthesizePolygons] emits one convex-hull polygon per surviving
//     cluster, stamped with the modal acquisition time.
//
// # Determinism
//
// For a fixed input ordering and fixed parameters the pipeline is
// deterministic: cluster labels are assigned in first-touch scan order,
// modal-time ties break toward the earliest timestamp, and record IDs are
// content-addressed SHA-256 hashes, so replaying a run produces identical
// records (idempotent upserts downstream via ON CONFLICT DO NOTHING).
package domain
