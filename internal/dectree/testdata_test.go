package dectree

// sevenNodeTree is the smallest example with an internal node below the root.
const sevenNodeTree = `self_cpi_min <= 0.695117
|   all_cpi_mean <= 9.148936
|   |   self_cpi_mean <= 2.000000: 0
|   |   self_cpi_mean > 2.000000: 1
|   all_cpi_mean > 9.148936: 1
self_cpi_min > 0.695117: 1`

// deepTree has 20 edges spread over seven levels.
const deepTree = `self_cpi_min  <= 2.114625
|   self_cpi_min  <= 1.811556: 0
|   self_cpi_min  > 1.811556
|   |   neigh_cpi_mean  <= 10.000
|   |   |   self_cpi_mean  <= 10.000000: 0
|   |   |   self_cpi_mean  > 10.000000: 1
|   |   neigh_cpi_mean  > 10.000: 1
self_cpi_min  > 2.114625
|   self_cpi_min  <= 4.428
|   |   all_cpi_mean  <= 19.021
|   |   |   all_cpi_mean  <= 2.680851: 0
|   |   |   all_cpi_mean  > 2.680851
|   |   |   |   self_cpi_mean  <= 10.000
|   |   |   |   |   neigh_cpi_mean  <= 2.000
|   |   |   |   |   |   self_cpi_min  <= 3.394520: 0
|   |   |   |   |   |   self_cpi_min  > 3.394520: 1
|   |   |   |   |   neigh_cpi_mean  > 2.000: 1
|   |   |   |   self_cpi_mean  > 10.000: 1
|   |   all_cpi_mean  > 19.021: 1
|   self_cpi_min  > 4.428: 1`
