// Package main provides the Ember ML Framework CLI.
package main

import (
	"flag"
	"fmt"
	"math/rand"
	"os"

	"github.com/ember-ml/ember/autodiff"
	"github.com/ember-ml/ember/backend/cpu"
	"github.com/ember-ml/ember/data"
	"github.com/ember-ml/ember/nn"
	"github.com/ember-ml/ember/optim"
	"github.com/ember-ml/ember/train"
)

const version = "v0.1.0-dev"

func main() {
	if len(os.Args) < 2 {
		usage()
		return
	}

	switch os.Args[1] {
	case "version":
		fmt.Printf("Ember ML Framework %s\n", version)
	case "train":
		if err := runTrain(os.Args[2:]); err != nil {
			fmt.Fprintln(os.Stderr, "error:", err)
			os.Exit(1)
		}
	default:
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Println("Ember ML Framework - Minimal deep learning for Go")
	fmt.Printf("Version: %s\n\n", version)
	fmt.Println("Commands:")
	fmt.Println("  version    Show version")
	fmt.Println("  train      Train an XOR classifier (see train -help)")
}

func runTrain(args []string) error {
	fs := flag.NewFlagSet("train", flag.ExitOnError)
	size := fs.Int("size", 1000, "dataset size")
	std := fs.Float64("std", 0.1, "feature noise standard deviation")
	batch := fs.Int("batch", 32, "batch size")
	hidden := fs.Int("hidden", 8, "hidden layer width")
	lr := fs.Float64("lr", 0.5, "learning rate")
	momentum := fs.Float64("momentum", 0.0, "momentum factor")
	epochs := fs.Int("epochs", 100, "training epochs")
	seed := fs.Int64("seed", 42, "random seed")
	split := fs.Float64("split", 0.8, "training fraction of the dataset")
	save := fs.String("save", "", "save trained model to this path (.ember)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	rng := rand.New(rand.NewSource(*seed))

	ds, err := data.GenerateXOR(*size, *std, rng)
	if err != nil {
		return err
	}
	trainSet, evalSet, err := ds.Split(*split)
	if err != nil {
		return err
	}

	backend := autodiff.New(cpu.New())

	trainLoader, err := data.NewLoader(trainSet, data.LoaderConfig{BatchSize: *batch, Shuffle: true}, backend, rng)
	if err != nil {
		return err
	}
	evalLoader, err := data.NewLoader(evalSet, data.LoaderConfig{BatchSize: *batch}, backend, rng)
	if err != nil {
		return err
	}

	model := nn.NewMLP(2, *hidden, 1, backend, rng)
	opt, err := optim.NewSGD(model.Parameters(), optim.SGDConfig{LR: *lr, Momentum: *momentum})
	if err != nil {
		return err
	}

	trainer, err := train.NewTrainer(model, opt, backend)
	if err != nil {
		return err
	}

	fmt.Printf("Training on %d samples (%d held out), batch=%d hidden=%d lr=%g\n",
		trainSet.Len(), evalSet.Len(), *batch, *hidden, *lr)

	logEvery := *epochs / 10
	if logEvery == 0 {
		logEvery = 1
	}
	_, err = trainer.Fit(trainLoader, *epochs, func(stats train.EpochStats) error {
		if stats.Epoch%logEvery == 0 || stats.Epoch == *epochs {
			fmt.Printf("epoch %3d  loss=%.4f  acc=%.3f\n", stats.Epoch, stats.Loss, stats.Accuracy)
		}
		return nil
	})
	if err != nil {
		return err
	}

	eval := train.Evaluate(model, evalLoader, backend)
	fmt.Printf("eval: loss=%.4f acc=%.3f (%d/%d)\n", eval.Loss, eval.Accuracy, eval.Correct, eval.Total)

	if *save != "" {
		if err := train.SaveModel(*save, model, "MLP"); err != nil {
			return err
		}
		fmt.Println("saved model to", *save)
	}
	return nil
}
