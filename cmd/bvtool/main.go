// Package main provides bvtool, a small command-line utility for
// exercising a Bitvector: generate a random one, save it to a file,
// load it back, and report basic statistics.
package main

import (
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"

	hybridbv "github.com/adaptivebv/hybridbv"
)

func main() {
	bits := flag.Int64("bits", 1_000_000, "number of bits to generate")
	density := flag.Float64("density", 0.5, "fraction of bits set to 1")
	out := flag.String("out", "", "path to save the generated bitvector to")
	in := flag.String("in", "", "path to load a saved bitvector from instead of generating")
	flag.Parse()

	var bv *hybridbv.Bitvector
	if *in != "" {
		f, err := os.Open(*in)
		if err != nil {
			log.Fatalf("open %s: %v", *in, err)
		}
		defer f.Close()
		bv, err = hybridbv.Load(f)
		if err != nil {
			log.Fatalf("load %s: %v", *in, err)
		}
		bv.SetTag(*in)
	} else {
		bv = hybridbv.New()
		rng := rand.New(rand.NewSource(1))
		for i := int64(0); i < *bits; i++ {
			v := uint32(0)
			if rng.Float64() < *density {
				v = 1
			}
			bv.Insert(uint64(i), v)
		}
		bv.SetTag("generated")
	}

	fmt.Printf("%s: length=%d ones=%d zeros=%d leaves=%d space=%d bytes\n",
		bv, bv.Length(), bv.Ones(), bv.Zeros(), bv.Leaves(), bv.Space())

	if *out != "" {
		f, err := os.Create(*out)
		if err != nil {
			log.Fatalf("create %s: %v", *out, err)
		}
		defer f.Close()
		if err := bv.Save(f); err != nil {
			log.Fatalf("save %s: %v", *out, err)
		}
		fmt.Printf("saved to %s\n", *out)
	}
}
