package service

import (
	"context"
	"fmt"
	"math"
)

// GeometryModule is the name of the default numerical service module. It is
// the fixed service-module identifier the proxy passes when spawning a
// background process.
const GeometryModule = "lattice.geometry"

// RegisterGeometry installs the default numerical functions under the
// lattice.geometry module.
func RegisterGeometry(reg *Registry) error {
	return reg.RegisterModule(GeometryModule, map[string]Func{
		"add":      geometryAdd,
		"sum":      geometrySum,
		"mean":     geometryMean,
		"scale":    geometryScale,
		"distance": geometryDistance,
		"centroid": geometryCentroid,
		"bounds":   geometryBounds,
		"linspace": geometryLinspace,
	})
}

func geometryAdd(_ context.Context, args []any, _ map[string]any) (any, error) {
	if len(args) != 2 {
		return nil, fmt.Errorf("add expects 2 arguments, got %d", len(args))
	}
	a, err := asNumber(args[0])
	if err != nil {
		return nil, err
	}
	b, err := asNumber(args[1])
	if err != nil {
		return nil, err
	}
	return a + b, nil
}

func geometrySum(_ context.Context, args []any, _ map[string]any) (any, error) {
	values, err := oneNumberList("sum", args)
	if err != nil {
		return nil, err
	}
	total := 0.0
	for _, v := range values {
		total += v
	}
	return total, nil
}

func geometryMean(_ context.Context, args []any, _ map[string]any) (any, error) {
	values, err := oneNumberList("mean", args)
	if err != nil {
		return nil, err
	}
	if len(values) == 0 {
		return nil, fmt.Errorf("mean of an empty list is undefined")
	}
	total := 0.0
	for _, v := range values {
		total += v
	}
	return total / float64(len(values)), nil
}

func geometryScale(_ context.Context, args []any, _ map[string]any) (any, error) {
	if len(args) != 2 {
		return nil, fmt.Errorf("scale expects a vector and a factor, got %d arguments", len(args))
	}
	vector, err := asNumberList(args[0])
	if err != nil {
		return nil, err
	}
	factor, err := asNumber(args[1])
	if err != nil {
		return nil, err
	}
	scaled := make([]float64, len(vector))
	for i, v := range vector {
		scaled[i] = v * factor
	}
	return scaled, nil
}

func geometryDistance(_ context.Context, args []any, _ map[string]any) (any, error) {
	if len(args) != 2 {
		return nil, fmt.Errorf("distance expects 2 points, got %d arguments", len(args))
	}
	p, err := asPoint(args[0])
	if err != nil {
		return nil, err
	}
	q, err := asPoint(args[1])
	if err != nil {
		return nil, err
	}
	dx, dy, dz := q[0]-p[0], q[1]-p[1], q[2]-p[2]
	return math.Sqrt(dx*dx + dy*dy + dz*dz), nil
}

func geometryCentroid(_ context.Context, args []any, _ map[string]any) (any, error) {
	points, err := onePointList("centroid", args)
	if err != nil {
		return nil, err
	}
	if len(points) == 0 {
		return nil, fmt.Errorf("centroid of an empty point list is undefined")
	}
	var cx, cy, cz float64
	for _, p := range points {
		cx += p[0]
		cy += p[1]
		cz += p[2]
	}
	n := float64(len(points))
	return []float64{cx / n, cy / n, cz / n}, nil
}

func geometryBounds(_ context.Context, args []any, _ map[string]any) (any, error) {
	points, err := onePointList("bounds", args)
	if err != nil {
		return nil, err
	}
	if len(points) == 0 {
		return nil, fmt.Errorf("bounds of an empty point list is undefined")
	}
	low := points[0]
	high := points[0]
	for _, p := range points[1:] {
		for i := 0; i < 3; i++ {
			low[i] = math.Min(low[i], p[i])
			high[i] = math.Max(high[i], p[i])
		}
	}
	return map[string]any{
		"min": []float64{low[0], low[1], low[2]},
		"max": []float64{high[0], high[1], high[2]},
	}, nil
}

func geometryLinspace(_ context.Context, args []any, kwargs map[string]any) (any, error) {
	if len(args) != 2 {
		return nil, fmt.Errorf("linspace expects start and stop, got %d arguments", len(args))
	}
	start, err := asNumber(args[0])
	if err != nil {
		return nil, err
	}
	stop, err := asNumber(args[1])
	if err != nil {
		return nil, err
	}
	num := 50.0
	if raw, ok := kwargs["num"]; ok {
		num, err = asNumber(raw)
		if err != nil {
			return nil, err
		}
	}
	count := int(num)
	if count < 2 {
		return nil, fmt.Errorf("linspace needs num >= 2, got %d", count)
	}
	step := (stop - start) / float64(count-1)
	values := make([]float64, count)
	for i := range values {
		values[i] = start + float64(i)*step
	}
	values[count-1] = stop
	return values, nil
}

func asNumber(v any) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	default:
		return 0, fmt.Errorf("expected a number, got %T", v)
	}
}

func asNumberList(v any) ([]float64, error) {
	list, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("expected a list of numbers, got %T", v)
	}
	values := make([]float64, len(list))
	for i, item := range list {
		n, err := asNumber(item)
		if err != nil {
			return nil, err
		}
		values[i] = n
	}
	return values, nil
}

func asPoint(v any) ([3]float64, error) {
	values, err := asNumberList(v)
	if err != nil {
		return [3]float64{}, err
	}
	if len(values) != 3 {
		return [3]float64{}, fmt.Errorf("expected an [x, y, z] point, got %d values", len(values))
	}
	return [3]float64{values[0], values[1], values[2]}, nil
}

func oneNumberList(name string, args []any) ([]float64, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("%s expects 1 list argument, got %d", name, len(args))
	}
	return asNumberList(args[0])
}

func onePointList(name string, args []any) ([][3]float64, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("%s expects 1 list of points, got %d", name, len(args))
	}
	list, ok := args[0].([]any)
	if !ok {
		return nil, fmt.Errorf("%s expects a list of points, got %T", name, args[0])
	}
	points := make([][3]float64, len(list))
	for i, item := range list {
		p, err := asPoint(item)
		if err != nil {
			return nil, err
		}
		points[i] = p
	}
	return points, nil
}
