// Package pkg provides the core libraries for layoutfix layout correction.
//
// # Overview
//
// layoutfix takes AI-generated social-media layout drafts and repairs them
// against design rules before a visual critic scores the result. The pkg
// directory is organized into four areas:
//
//  1. [layer] - The layout model: layers, roles, properties and draft I/O
//  2. Design rules - [tokens], [typography], [color], [grid], [elevation],
//     [overlay], [textopt], [positioning] and [archetype]
//  3. Correction - [validator], [correction] and [critic]
//  4. [pipeline] - Orchestration (correct → critique → revise) with caching
//
// # Architecture
//
// The typical data flow:
//
//	Draft (JSON/YAML) + optional image analysis
//	         ↓
//	    [validator] (completeness and z-order)
//	         ↓
//	    [correction] (ordered, isolated fix steps)
//	         ↓
//	    [critic] (weighted scores, gates, verdict)
//	         ↓
//	    [critic.ApplyFixes] until approved or the revision limit
//
// # Quick Start
//
//	doc, _ := pipeline.ReadDocument("post.json")
//	runner := pipeline.NewRunner(cache.NewNullCache(), nil, logger)
//	defer runner.Close()
//
//	res, _ := runner.Execute(ctx, doc.Layers, doc.Analysis, doc.Options())
//	fmt.Println(res.Archetype, res.Critique.Verdict)
//
// # Infrastructure
//
// [cache] - File, memory (LRU), Redis and tiered cache backends behind one
// interface. [config] - TOML configuration with environment overrides.
// [imageanalysis] - HTTP client for the image-analysis provider.
// [observability] - Pipeline, cache and HTTP hooks with OpenTelemetry
// adapters. [errors] - Coded errors and input validation.
package pkg
