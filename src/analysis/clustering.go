package analysis

import (
	"math"
	"sort"

	"confluence-engine/src/models"
)

// -----------------------------------------------------------------------------
// Temporal clustering: groups the active timeframes whose closes land
// within a small shared window. The largest cluster is the confluence
// signal proper; raw active-count is only a weaker proxy.
// -----------------------------------------------------------------------------

const (
	inClusterMultiplier  = 1.5
	outClusterMultiplier = 0.3
)

// -----------------------------------------------------------------------------

// BuildClusters greedily groups active pulls whose minutes-to-close fall
// within windowMinutes of an unclaimed seed. Assignment is a partition: a
// timeframe belongs to exactly one cluster. The cluster with the most
// members (ties broken by earliest center) is marked as main.
func BuildClusters(pulls []models.MDecompressionPull, windowMinutes float64) []models.MTemporalCluster {
	if windowMinutes <= 0 {
		windowMinutes = 5
	}

	active := ActivePulls(pulls)
	if len(active) == 0 {
		return []models.MTemporalCluster{}
	}

	sort.SliceStable(active, func(i, j int) bool {
		return active[i].MinutesToClose < active[j].MinutesToClose
	})

	claimed := make([]bool, len(active))
	clusters := make([]models.MTemporalCluster, 0, len(active))

	for i := range active {
		if claimed[i] {
			continue
		}
		seed := active[i]
		claimed[i] = true

		cluster := models.MTemporalCluster{
			CenterMinutes: seed.MinutesToClose,
			TimeframeIDs:  []string{seed.TimeframeID},
		}

		for j := i + 1; j < len(active); j++ {
			if claimed[j] {
				continue
			}
			if math.Abs(active[j].MinutesToClose-seed.MinutesToClose) <= windowMinutes {
				claimed[j] = true
				cluster.TimeframeIDs = append(cluster.TimeframeIDs, active[j].TimeframeID)
			}
		}

		cluster.MemberCount = len(cluster.TimeframeIDs)
		cluster.Score, cluster.Intensity = scoreClusterSize(cluster.MemberCount)
		clusters = append(clusters, cluster)
	}

	markMainCluster(clusters)
	return clusters
}

// -----------------------------------------------------------------------------

// scoreClusterSize maps member count to (score, intensity tier).
func scoreClusterSize(members int) (float64, string) {
	switch {
	case members >= 6:
		return 95, "explosive"
	case members == 5:
		return 80, "very_strong"
	case members == 4:
		return 65, "strong"
	case members == 3:
		return 40, "moderate"
	case members == 2:
		return 25, "low"
	default:
		return 10, "low"
	}
}

// -----------------------------------------------------------------------------

func markMainCluster(clusters []models.MTemporalCluster) {
	mainIdx := -1
	for i := range clusters {
		if mainIdx < 0 {
			mainIdx = i
			continue
		}
		if clusters[i].MemberCount > clusters[mainIdx].MemberCount {
			mainIdx = i
		} else if clusters[i].MemberCount == clusters[mainIdx].MemberCount &&
			clusters[i].CenterMinutes < clusters[mainIdx].CenterMinutes {
			mainIdx = i
		}
	}
	if mainIdx >= 0 {
		clusters[mainIdx].IsMain = true
	}
}

// -----------------------------------------------------------------------------

// MainCluster returns the dominant cluster, or nil when no timeframe is
// active (an expected branch, not a failure).
func MainCluster(clusters []models.MTemporalCluster) *models.MTemporalCluster {
	for i := range clusters {
		if clusters[i].IsMain {
			return &clusters[i]
		}
	}
	return nil
}

// -----------------------------------------------------------------------------

// ClusterMultiplier weights a timeframe's pull by its membership in the
// main cluster: 1.5x inside, 0.3x outside. With no clusters at all, every
// timeframe carries neutral weight.
func ClusterMultiplier(clusters []models.MTemporalCluster, timeframeID string) float64 {
	main := MainCluster(clusters)
	if main == nil {
		return 1.0
	}
	for _, id := range main.TimeframeIDs {
		if id == timeframeID {
			return inClusterMultiplier
		}
	}
	return outClusterMultiplier
}
