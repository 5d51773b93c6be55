// Package gradient implements the force terms of the UMAP layout objective.
//
// The low-dimensional membership curve is 1 / (1 + a*d^(2b)). Differentiating
// its cross entropy against the graph weights gives one attractive coefficient
// for edges and one repulsive coefficient for negative samples:
//
//	attractive(d2) = -2ab d2^(b-1) / (a d2^b + 1)
//	repulsive(d2)  =  2γb / ((0.001 + d2)(a d2^b + 1))
//
// Both are multiplied by the per-dimension difference and clipped to
// [-ClipBound, ClipBound] before the learning rate is applied.
//
// All math runs in float64 even though embeddings are stored as float32.
package gradient
