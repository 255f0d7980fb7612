package classifier

import "strings"

// complexityMultipliers scale GPU memory, system memory and duration.
// cpu_cores and storage are only adjusted by pattern matches and floors.
var complexityMultipliers = map[TaskComplexity]float64{
	ComplexitySimple:   0.5,
	ComplexityModerate: 1.0,
	ComplexityComplex:  2.0,
	ComplexityAdvanced: 4.0,
}

func baseRequirement(tt TaskType) ResourceRequirement {
	// Structural defaults; Training, Inference and Analysis carry explicit
	// overrides, every other type uses these as-is.
	req := ResourceRequirement{
		CPUCores:                 1,
		GPUMemoryGB:              0,
		SystemMemoryGB:           4,
		StorageGB:                10,
		NetworkBandwidthMbps:     100,
		EstimatedDurationMinutes: 60,
	}

	switch tt {
	case TypeTraining:
		req.GPUMemoryGB = 8
		req.SystemMemoryGB = 16
		req.EstimatedDurationMinutes = 120
	case TypeInference:
		req.GPUMemoryGB = 4
		req.SystemMemoryGB = 8
		req.EstimatedDurationMinutes = 5
	case TypeAnalysis:
		req.CPUCores = 4
		req.SystemMemoryGB = 8
		req.EstimatedDurationMinutes = 30
	}

	return req
}

// predictResources derives a resource estimate from the task type's base
// values, the complexity multiplier, resource-intensity keyword patterns
// found in the text, and the optional context. Floors are enforced last so
// no amount of multiplier math can push a field below its minimum.
func (v *vocabulary) predictResources(text string, tt TaskType, complexity TaskComplexity, ctx *AnalysisContext) ResourceRequirement {
	req := baseRequirement(tt)

	mult := complexityMultipliers[complexity]
	req.GPUMemoryGB *= mult
	req.SystemMemoryGB *= mult
	req.EstimatedDurationMinutes *= mult

	// Pattern groups are independent; several may fire on one description.
	for pattern, keywords := range v.patterns {
		matched := false
		for _, kw := range keywords {
			if strings.Contains(text, kw) {
				matched = true
				break
			}
		}
		if !matched {
			continue
		}

		switch pattern {
		case patternGPUIntensive:
			req.GPUMemoryGB *= 1.5
		case patternCPUIntensive:
			req.CPUCores *= 2
		case patternMemoryIntensive:
			req.SystemMemoryGB *= 2
		case patternStorageIntensive:
			req.StorageGB *= 5
		}
	}

	if ctx != nil {
		if ctx.ModelSize != nil && *ctx.ModelSize > 0 {
			// Roughly 4 GB of GPU memory per billion parameters; never
			// decreases the keyword-derived estimate.
			fromModel := float64(*ctx.ModelSize) / 1e9 * 4
			if fromModel > req.GPUMemoryGB {
				req.GPUMemoryGB = fromModel
			}
		}
		if ctx.BatchSize != nil && *ctx.BatchSize > 0 {
			batchMult := float64(*ctx.BatchSize) / 4
			if batchMult < 1 {
				batchMult = 1
			}
			req.GPUMemoryGB *= batchMult
			req.SystemMemoryGB *= batchMult
		}
	}

	if req.CPUCores < 1 {
		req.CPUCores = 1
	}
	if req.GPUMemoryGB < 0 {
		req.GPUMemoryGB = 0
	}
	if req.SystemMemoryGB < 2 {
		req.SystemMemoryGB = 2
	}
	if req.StorageGB < 5 {
		req.StorageGB = 5
	}
	if req.NetworkBandwidthMbps < 0 {
		req.NetworkBandwidthMbps = 0
	}
	if req.EstimatedDurationMinutes < 1 {
		req.EstimatedDurationMinutes = 1
	}

	return req
}
