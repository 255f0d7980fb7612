package classifier

// vocabulary holds every keyword table the analyzer scores against. It is
// built once in NewAnalyzer and treated as immutable afterwards, so
// concurrent reads need no synchronization.
//
// English keywords match case-insensitively after preprocessing; the
// Traditional Chinese synonyms match as substrings since Chinese has no
// word boundaries.
type vocabulary struct {
	types        map[TaskType][]string
	complexity   map[TaskComplexity][]string
	sensitivity  map[TimeSensitivity][]string
	patterns     map[resourcePattern][]string
	advancedTech []string
	techTags     map[string][]string
}

type resourcePattern string

const (
	patternGPUIntensive     resourcePattern = "gpu_intensive"
	patternCPUIntensive     resourcePattern = "cpu_intensive"
	patternMemoryIntensive  resourcePattern = "memory_intensive"
	patternStorageIntensive resourcePattern = "storage_intensive"
)

func newVocabulary() *vocabulary {
	return &vocabulary{
		types: map[TaskType][]string{
			TypeTraining: {
				"train", "training", "fit", "finetune", "fine tune", "fine tuning",
				"learn", "backprop", "epoch", "gradient",
				"訓練", "微調", "學習",
			},
			TypeInference: {
				"inference", "predict", "prediction", "serve", "serving",
				"generate", "completion", "forward pass",
				"推理", "預測", "生成",
			},
			TypeAnalysis: {
				"analyze", "analysis", "analyse", "explore", "insight",
				"statistics", "correlation", "report", "investigate",
				"分析", "統計", "洞察",
			},
			TypeOptimization: {
				"optimize", "optimization", "tune", "tuning", "hyperparameter",
				"search", "prune", "pruning", "quantize", "compress",
				"優化", "調參", "壓縮",
			},
			TypeEvaluation: {
				"evaluate", "evaluation", "benchmark", "validate", "validation",
				"test set", "metric", "accuracy", "score",
				"評估", "驗證", "測試",
			},
			TypePreprocessing: {
				"preprocess", "preprocessing", "clean", "cleaning", "etl",
				"transform", "normalize", "tokenize", "augment", "ingest",
				"預處理", "清洗", "轉換",
			},
			TypeDeployment: {
				"deploy", "deployment", "release", "rollout", "ship",
				"container", "docker", "production",
				"部署", "發布", "上線",
			},
			TypeMonitoring: {
				"monitor", "monitoring", "alert", "observe", "watch",
				"dashboard", "drift", "health check",
				"監控", "告警", "觀測",
			},
		},
		complexity: map[TaskComplexity][]string{
			ComplexitySimple: {
				"simple", "basic", "quick", "small", "trivial", "toy",
				"簡單", "基礎", "快速",
			},
			ComplexityModerate: {
				"moderate", "standard", "typical", "regular", "medium",
				"中等", "標準", "一般",
			},
			ComplexityComplex: {
				"complex", "large", "deep", "multi stage", "ensemble",
				"transformer", "comprehensive",
				"複雜", "大型", "深度",
			},
			ComplexityAdvanced: {
				"advanced", "state of the art", "massive", "billion",
				"large language model", "llm", "foundation model",
				"高級", "海量", "大語言模型",
			},
		},
		sensitivity: map[TimeSensitivity][]string{
			SensitivityRealTime: {
				"realtime", "real time", "immediately", "urgent",
				"instant", "live", "now", "asap",
				"實時", "即時", "緊急",
			},
			SensitivityInteractive: {
				"interactive", "responsive", "user facing", "online", "chat",
				"session", "demo",
				"交互", "互動", "在線",
			},
			SensitivityBatch: {
				"batch", "scheduled", "nightly", "daily", "periodic", "bulk",
				"批量", "批次", "定時",
			},
			SensitivityOffline: {
				"offline", "background", "whenever", "no rush", "low priority",
				"archive",
				"離線", "後台",
			},
		},
		patterns: map[resourcePattern][]string{
			patternGPUIntensive: {
				"gpu", "cuda", "neural", "deep learning", "transformer",
				"diffusion", "rendering",
				"顯卡", "神經網絡",
			},
			patternCPUIntensive: {
				"cpu", "compute", "simulation", "parallel", "numeric",
				"encoding", "compression",
				"計算", "模擬",
			},
			patternMemoryIntensive: {
				"memory", "in memory", "cache", "embedding", "large dataset",
				"graph",
				"內存", "記憶體",
			},
			patternStorageIntensive: {
				"storage", "disk", "dataset", "corpus", "archive", "terabyte",
				"data lake",
				"存儲", "儲存",
			},
		},
		advancedTech: []string{
			"distributed", "multi gpu", "cluster", "kubernetes",
			"microservices", "pipeline", "orchestration",
		},
		techTags: map[string][]string{
			"machine_learning": {
				"machine learning", "ml", "model", "sklearn", "xgboost", "機器學習",
			},
			"deep_learning": {
				"deep learning", "neural", "pytorch", "tensorflow", "transformer", "深度學習",
			},
			"nlp": {
				"nlp", "language", "text", "token", "llm", "translation", "自然語言",
			},
			"computer_vision": {
				"vision", "image", "video", "detection", "segmentation", "視覺", "圖像",
			},
			"reinforcement_learning": {
				"reinforcement", "rl", "agent", "reward", "policy", "強化學習",
			},
			"data_science": {
				"data science", "pandas", "statistics", "visualization", "數據科學",
			},
			"gpu_computing": {
				"gpu", "cuda", "tensor core", "顯卡",
			},
			"cloud": {
				"cloud", "aws", "gcp", "azure", "s3", "serverless", "雲端",
			},
			"financial": {
				"stock", "trading", "market", "portfolio", "finance", "股票", "交易", "金融",
			},
		},
	}
}
