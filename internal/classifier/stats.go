package classifier

// ComputeStatistics aggregates a list of classifications: counts per type
// and complexity, the mean of every resource field, and the mean confidence
// score. Empty input returns empty (but non-nil) maps and zero means; there
// is no division by zero.
func ComputeStatistics(classifications []TaskClassification) Statistics {
	stats := Statistics{
		ByType:       make(map[string]int),
		ByComplexity: make(map[string]int),
		GeneratedAt:  nowRFC3339(),
	}

	if len(classifications) == 0 {
		return stats
	}

	var cpu, gpu, mem, storage, network, duration, confidence float64
	for _, c := range classifications {
		stats.ByType[string(c.TaskType)]++
		stats.ByComplexity[string(c.Complexity)]++

		cpu += float64(c.ResourceRequirements.CPUCores)
		gpu += c.ResourceRequirements.GPUMemoryGB
		mem += c.ResourceRequirements.SystemMemoryGB
		storage += c.ResourceRequirements.StorageGB
		network += c.ResourceRequirements.NetworkBandwidthMbps
		duration += c.ResourceRequirements.EstimatedDurationMinutes
		confidence += c.ConfidenceScore
	}

	n := float64(len(classifications))
	stats.Total = len(classifications)
	stats.MeanResources = ResourceRequirement{
		CPUCores:                 int(cpu / n),
		GPUMemoryGB:              gpu / n,
		SystemMemoryGB:           mem / n,
		StorageGB:                storage / n,
		NetworkBandwidthMbps:     network / n,
		EstimatedDurationMinutes: duration / n,
	}
	stats.MeanConfidence = confidence / n

	return stats
}
