package analysis

import (
	"testing"

	"confluence-engine/src/models"
)

func activePull(id string, mtc, strength float64, direction string) models.MDecompressionPull {
	return models.MDecompressionPull{
		TimeframeID:    id,
		Active:         true,
		MinutesToClose: mtc,
		MidLevel:       100.5,
		DistancePct:    0.5,
		Direction:      direction,
		Strength:       strength,
	}
}

func TestBuildClustersPartition(t *testing.T) {
	pulls := []models.MDecompressionPull{
		activePull("5m", 2, 5, "up"),
		activePull("15m", 4, 5, "up"),
		activePull("30m", 6, 5, "up"),
		activePull("1h", 40, 5, "up"),
		activePull("2h", 43, 5, "up"),
		{TimeframeID: "4h", Active: false},
	}

	clusters := BuildClusters(pulls, 5)
	if len(clusters) != 2 {
		t.Fatalf("expected 2 clusters, got %d", len(clusters))
	}

	seen := make(map[string]int)
	total := 0
	for _, cl := range clusters {
		total += cl.MemberCount
		if cl.MemberCount != len(cl.TimeframeIDs) {
			t.Fatalf("member count disagrees with id list: %+v", cl)
		}
		for _, id := range cl.TimeframeIDs {
			seen[id]++
		}
	}
	if total != 5 {
		t.Fatalf("partition lost or duplicated members: %d", total)
	}
	for id, n := range seen {
		if n != 1 {
			t.Fatalf("%s assigned to %d clusters", id, n)
		}
	}
	if _, ok := seen["4h"]; ok {
		t.Fatal("inactive timeframe must not be clustered")
	}
}

func TestClusterScoreTable(t *testing.T) {
	cases := []struct {
		members   int
		score     float64
		intensity string
	}{
		{7, 95, "explosive"},
		{6, 95, "explosive"},
		{5, 80, "very_strong"},
		{4, 65, "strong"},
		{3, 40, "moderate"},
		{2, 25, "low"},
		{1, 10, "low"},
	}

	ids := []string{"5m", "10m", "15m", "20m", "30m", "45m", "1h"}
	for _, tc := range cases {
		pulls := make([]models.MDecompressionPull, 0, tc.members)
		for i := 0; i < tc.members; i++ {
			pulls = append(pulls, activePull(ids[i], 2, 5, "up"))
		}
		clusters := BuildClusters(pulls, 5)
		if len(clusters) != 1 {
			t.Fatalf("%d members: expected one cluster, got %d", tc.members, len(clusters))
		}
		if clusters[0].Score != tc.score || clusters[0].Intensity != tc.intensity {
			t.Fatalf("%d members: got score %.0f/%s, want %.0f/%s",
				tc.members, clusters[0].Score, clusters[0].Intensity, tc.score, tc.intensity)
		}
	}
}

func TestMainClusterLargestWins(t *testing.T) {
	pulls := []models.MDecompressionPull{
		activePull("5m", 2, 5, "up"),
		activePull("15m", 3, 5, "up"),
		activePull("30m", 50, 5, "up"),
		activePull("1h", 52, 5, "up"),
		activePull("2h", 54, 5, "up"),
	}
	clusters := BuildClusters(pulls, 5)
	main := MainCluster(clusters)
	if main == nil {
		t.Fatal("expected a main cluster")
	}
	if main.MemberCount != 3 {
		t.Fatalf("largest cluster should be main, got %d members", main.MemberCount)
	}
}

func TestMainClusterTieBreaksEarlier(t *testing.T) {
	pulls := []models.MDecompressionPull{
		activePull("5m", 2, 5, "up"),
		activePull("15m", 3, 5, "up"),
		activePull("1h", 50, 5, "up"),
		activePull("2h", 52, 5, "up"),
	}
	clusters := BuildClusters(pulls, 5)
	main := MainCluster(clusters)
	if main == nil || main.CenterMinutes != 2 {
		t.Fatalf("tie should break toward the earlier cluster: %+v", main)
	}
}

func TestClusterMultiplier(t *testing.T) {
	pulls := []models.MDecompressionPull{
		activePull("5m", 2, 5, "up"),
		activePull("15m", 3, 5, "up"),
		activePull("1h", 50, 5, "up"),
	}
	clusters := BuildClusters(pulls, 5)

	if m := ClusterMultiplier(clusters, "5m"); m != 1.5 {
		t.Fatalf("main-cluster member should weigh 1.5x, got %v", m)
	}
	if m := ClusterMultiplier(clusters, "1h"); m != 0.3 {
		t.Fatalf("outside member should weigh 0.3x, got %v", m)
	}
	if m := ClusterMultiplier(nil, "5m"); m != 1.0 {
		t.Fatalf("no clusters should weigh neutral, got %v", m)
	}
}

func TestBuildClustersNoActive(t *testing.T) {
	pulls := []models.MDecompressionPull{{TimeframeID: "5m"}, {TimeframeID: "1h"}}
	if clusters := BuildClusters(pulls, 5); len(clusters) != 0 {
		t.Fatalf("expected no clusters, got %d", len(clusters))
	}
	if MainCluster(nil) != nil {
		t.Fatal("main of nothing should be nil")
	}
}
