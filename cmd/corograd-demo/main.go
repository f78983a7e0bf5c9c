// Command corograd-demo wires the graph, optimizer, and input packages
// together into a small two-layer classifier, to exercise the engine
// end-to-end the way a unit test cannot: a real ExecutionContext, a real
// optimizer, and a batch source driving it step after step.
package main

import (
	"flag"
	"log"

	"github.com/corograd/core/graph"
	"github.com/corograd/core/input"
	"github.com/corograd/core/optimizer"
	"github.com/corograd/core/tensor"
)

func main() {
	epochs := flag.Int("epochs", 200, "number of training steps")
	lr := flag.Float64("lr", 0.05, "learning rate")
	batch := flag.Int("batch", 16, "batch size")
	hidden := flag.Int("hidden", 8, "hidden layer width")
	optName := flag.String("optimizer", "adam", "sgd, adam, or amsgrad")
	seed := flag.Int64("seed", 42, "random seed for the synthetic data source")
	parquetPath := flag.String("parquet", "", "optional path to a parquet file of features/labels, instead of synthetic data")
	flag.Parse()

	const (
		inputDim  = 4
		outputDim = 2
	)

	source, classify, err := buildSource(*parquetPath, *batch, inputDim, *seed)
	if err != nil {
		log.Fatalf("corograd-demo: %v", err)
	}
	defer source.Close()

	opt, err := buildOptimizer(*optName, float32(*lr), source)
	if err != nil {
		log.Fatalf("corograd-demo: %v", err)
	}

	ctx := graph.NewExecutionContext(nil)

	w1, err := graph.NewVariable(ctx, "w1", tensor.Shape{inputDim, *hidden}, nil, opt)
	if err != nil {
		log.Fatalf("corograd-demo: %v", err)
	}

	if err := ctx.RegisterOperation(w1); err != nil {
		log.Fatalf("corograd-demo: %v", err)
	}

	b1, err := graph.NewVariable(ctx, "b1", tensor.Shape{*hidden}, nil, opt)
	if err != nil {
		log.Fatalf("corograd-demo: %v", err)
	}

	if err := ctx.RegisterOperation(b1); err != nil {
		log.Fatalf("corograd-demo: %v", err)
	}

	w2, err := graph.NewVariable(ctx, "w2", tensor.Shape{*hidden, outputDim}, nil, opt)
	if err != nil {
		log.Fatalf("corograd-demo: %v", err)
	}

	if err := ctx.RegisterOperation(w2); err != nil {
		log.Fatalf("corograd-demo: %v", err)
	}

	b2, err := graph.NewVariable(ctx, "b2", tensor.Shape{outputDim}, nil, opt)
	if err != nil {
		log.Fatalf("corograd-demo: %v", err)
	}

	if err := ctx.RegisterOperation(b2); err != nil {
		log.Fatalf("corograd-demo: %v", err)
	}

	seedWeights(w1, w2, *seed)

	x, err := graph.NewConstant(ctx, tensor.Shape{*batch, inputDim}, make([]float32, *batch*inputDim))
	if err != nil {
		log.Fatalf("corograd-demo: %v", err)
	}

	labels, err := graph.NewConstant(ctx, tensor.Shape{*batch, outputDim}, make([]float32, *batch*outputDim))
	if err != nil {
		log.Fatalf("corograd-demo: %v", err)
	}

	mul1, err := graph.NewMultiplication(ctx, x, w1)
	if err != nil {
		log.Fatalf("corograd-demo: %v", err)
	}

	bias1, err := graph.NewBroadcastBias(ctx, b1, *batch)
	if err != nil {
		log.Fatalf("corograd-demo: %v", err)
	}

	dense1, err := graph.NewAdd(ctx, mul1, bias1)
	if err != nil {
		log.Fatalf("corograd-demo: %v", err)
	}

	act1, err := graph.NewLeakyReLU(ctx, dense1)
	if err != nil {
		log.Fatalf("corograd-demo: %v", err)
	}

	mul2, err := graph.NewMultiplication(ctx, act1, w2)
	if err != nil {
		log.Fatalf("corograd-demo: %v", err)
	}

	bias2, err := graph.NewBroadcastBias(ctx, b2, *batch)
	if err != nil {
		log.Fatalf("corograd-demo: %v", err)
	}

	logits, err := graph.NewAdd(ctx, mul2, bias2)
	if err != nil {
		log.Fatalf("corograd-demo: %v", err)
	}

	loss, err := graph.NewSoftmaxCrossEntropy(ctx, logits, labels)
	if err != nil {
		log.Fatalf("corograd-demo: %v", err)
	}

	if err := ctx.InitializeExecution(); err != nil {
		log.Fatalf("corograd-demo: %v", err)
	}

	for step := 0; step < *epochs; step++ {
		features, rawLabels, n, err := source.Next()
		if err != nil {
			log.Fatalf("corograd-demo: reading batch: %v", err)
		}

		if err := x.SetData(features); err != nil {
			log.Fatalf("corograd-demo: %v", err)
		}

		oneHot := classify(features, rawLabels, n, inputDim, outputDim)
		if err := labels.SetData(oneHot); err != nil {
			log.Fatalf("corograd-demo: %v", err)
		}

		loss.SetTrainingMode(true)

		if _, err := ctx.ExecuteForwardPropagation(); err != nil {
			log.Fatalf("corograd-demo: forward: %v", err)
		}

		if err := ctx.ExecuteBackwardPropagation(); err != nil {
			log.Fatalf("corograd-demo: backward: %v", err)
		}

		if step%20 == 0 || step == *epochs-1 {
			loss.SetTrainingMode(false)

			results, err := ctx.ExecuteForwardPropagation()
			if err != nil {
				log.Fatalf("corograd-demo: eval forward: %v", err)
			}

			buf, err := ctx.GetMemoryBuffer(results[0])
			if err != nil {
				log.Fatalf("corograd-demo: %v", err)
			}

			log.Printf("step %d: loss=%.4f", step, buf[0])
		}
	}
}

// buildSource picks a synthetic or parquet-backed feature source and
// returns a classify function that turns a raw batch into one-hot labels
// of width outputDim.
func buildSource(path string, batch, inputDim int, seed int64) (input.MatrixSource, func(features, rawLabels []float32, n, inputDim, outputDim int) []float32, error) {
	if path != "" {
		src, err := input.NewParquetMatrixSource(path, batch, inputDim, true)
		if err != nil {
			return nil, nil, err
		}

		return src, labelColumnToOneHot, nil
	}

	return input.NewRandomMatrixSource(batch, inputDim, 0, seed), sumSignToOneHot, nil
}

// sumSignToOneHot derives a two-class synthetic label from the sign of each
// row's feature sum, since the random source itself carries no labels.
func sumSignToOneHot(features, _ []float32, n, inputDim, outputDim int) []float32 {
	out := make([]float32, n*outputDim)

	for r := 0; r < n; r++ {
		var sum float32
		for c := 0; c < inputDim; c++ {
			sum += features[r*inputDim+c]
		}

		cls := 0
		if sum > 0 {
			cls = 1
		}

		out[r*outputDim+cls] = 1
	}

	return out
}

// labelColumnToOneHot converts the parquet source's single label column
// (0 or non-zero) into a one-hot row, mirroring sumSignToOneHot's shape.
func labelColumnToOneHot(_, rawLabels []float32, n, _, outputDim int) []float32 {
	out := make([]float32, n*outputDim)

	for r := 0; r < n; r++ {
		cls := 0
		if rawLabels[r] != 0 {
			cls = 1
		}

		out[r*outputDim+cls] = 1
	}

	return out
}

func buildOptimizer(name string, lr float32, src optimizer.BatchSizeSource) (optimizer.Optimizer, error) {
	switch name {
	case "sgd":
		return optimizer.NewSGD(lr, optimizer.WithSGDBatchSize(src)), nil
	case "adam":
		return optimizer.NewAdam(lr, src)
	case "amsgrad":
		return optimizer.NewAMSGrad(lr, src)
	default:
		return nil, errUnknownOptimizer(name)
	}
}

type errUnknownOptimizer string

func (e errUnknownOptimizer) Error() string {
	return "unknown optimizer " + string(e)
}

// seedWeights fills w1/w2 with small deterministic values so the network
// does not start at an all-zero saddle point; b1/b2 stay at zero.
func seedWeights(w1, w2 *graph.Variable, seed int64) {
	fill := func(data []float32, scale float32) {
		s := uint64(seed) | 1
		for i := range data {
			s ^= s << 13
			s ^= s >> 7
			s ^= s << 17
			data[i] = (float32(s%1000)/1000 - 0.5) * scale
		}
	}

	fill(w1.Data(), 0.5)
	fill(w2.Data(), 0.5)
}
